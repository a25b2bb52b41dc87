package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// console prints status lines. The progress counter is redrawn in place only when
// the output is a terminal.
type console struct {
	out    io.Writer
	fd     int
	isTerm bool
	// shown is the progress text currently drawn after the status line
	shown string
}

func newConsole(out io.Writer) *console {
	c := &console{out: out, fd: -1}
	if f, ok := out.(*os.File); ok {
		c.fd = int(f.Fd())
		c.isTerm = term.IsTerminal(c.fd)
	}
	return c
}

func (c *console) println(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// step starts a status line finished by done or failed
func (c *console) step(format string, args ...any) {
	fmt.Fprintf(c.out, format+"...", args...)
}

func (c *console) done(fromCache bool) {
	c.clearProgress()
	if fromCache {
		fmt.Fprint(c.out, color.YellowString(" from cache"))
	}
	fmt.Fprintln(c.out, color.GreenString(" done."))
}

func (c *console) failed() {
	c.clearProgress()
	fmt.Fprintln(c.out, color.RedString(" failed."))
}

// progress redraws " i/N (pct%)" after the current step
func (c *console) progress(done, total int) {
	if !c.isTerm || total == 0 {
		return
	}
	digits := len(strconv.Itoa(total))
	text := fmt.Sprintf(" %*d/%d (%5.1f%%)", digits, done, total, float64(done)/float64(total)*100)

	fmt.Fprint(c.out, strings.Repeat("\b", len(c.shown))+text)
	c.shown = text
}

func (c *console) clearProgress() {
	c.shown = ""
}

// width returns the terminal width, or 0 when unknown
func (c *console) width() int {
	if !c.isTerm {
		return 0
	}
	width, _, err := term.GetSize(c.fd)
	if err != nil {
		return 0
	}
	return width
}
