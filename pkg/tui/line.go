package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/papercomputeco/chatgate/pkg/render"
)

// RunLines drives session from a line-oriented reader, printing each new
// block once. It returns when in is exhausted, ctx ends, or /quit is read.
func RunLines(ctx context.Context, session *Session, f *Formatter, in io.Reader, out io.Writer) error {
	view := session.Widget.View()
	fmt.Fprintln(out, f.Welcome())

	printed := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		outcome, err := session.Execute(ctx, scanner.Text())

		blocks := view.Blocks()
		if len(blocks) < printed {
			// The conversation was reset.
			printed = 0
			fmt.Fprintln(out, f.Welcome())
		}
		for _, b := range blocks[printed:] {
			fmt.Fprintln(out, f.Block(b))
		}
		printed = len(blocks)

		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
		}
		if outcome.Copied {
			fmt.Fprintln(out, render.CopiedLabel)
		}
		if outcome.Notice != "" {
			fmt.Fprintln(out, outcome.Notice)
		}
		if outcome.Quit {
			return nil
		}
	}

	return scanner.Err()
}
