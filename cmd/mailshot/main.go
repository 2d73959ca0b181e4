package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mailshotcmd "github.com/telekom/mailshot/pkg/mailshot/cmd"
)

func main() {
	root := mailshotcmd.NewRootCommand(mailshotcmd.DefaultConfig())
	ctx, stop := signal.NotifyContext(root.Context(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	code := 1
	var exitErr *mailshotcmd.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		err = exitErr.Err
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
