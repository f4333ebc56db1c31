package scaffold

import (
	"context"

	"github.com/pkg/errors"
)

// EnsureTools verifies the external tools project generation shells out to are
// installed. It only checks availability; installing them is left to the user.
func EnsureTools(ctx context.Context, runner Runner) error {
	if runner == nil {
		runner = ExecRunner{}
	}

	if _, err := runner.Run(ctx, "", "xcodegen", "--version"); err != nil {
		return errors.New("xcodegen is required to generate projects. Install it with: brew install xcodegen")
	}
	if _, err := runner.Run(ctx, "", "xcodebuild", "-version"); err != nil {
		return errors.New("xcodebuild is required to generate projects. Install Xcode from the App Store and run: xcode-select --install")
	}
	return nil
}
