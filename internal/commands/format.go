package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/idl"
)

// FormatOptions are the flags and arguments of the format command
type FormatOptions struct {
	Files []string
	// PackageName defaults to the name of the directory above each file's
	// msg/ or srv/ directory
	PackageName string
}

// Format parses interface files and prints their canonical form, one blank
// line between files
func (c *Controller) Format(ctx context.Context, opts FormatOptions) error {
	if len(opts.Files) == 0 {
		return errors.WithHint(errors.New("no interface files given"), "usage: typesupport format FILE...")
	}

	out := c.stdout()
	for i, file := range opts.Files {
		if err := ctx.Err(); err != nil {
			return err
		}

		pkg := opts.PackageName
		if pkg == "" {
			pkg = packageOf(file)
		}

		var text string
		switch idl.Classify(file) {
		case idl.KindMessage:
			spec, err := idl.ParseMessageFile(pkg, file)
			if err != nil {
				return err
			}
			text = idl.FormatMessage(spec)
		case idl.KindService:
			spec, err := idl.ParseServiceFile(pkg, file)
			if err != nil {
				return err
			}
			text = idl.FormatService(spec)
		default:
			return errors.Newf("not an interface file: %s", file)
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, text)
	}
	return nil
}

// packageOf guesses the package of an interface file laid out as
// <pkg>/msg/Name.msg
func packageOf(file string) string {
	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	return filepath.Base(filepath.Dir(filepath.Dir(abs)))
}
