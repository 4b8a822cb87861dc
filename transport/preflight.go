package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const preflightPollInterval = time.Millisecond * 250

// AwaitReachable polls url until the sandbox answers with any HTTP status, so that a sleeping
// host can wake up before the session is bootstrapped.
func AwaitReachable(ctx context.Context, sender Sender, url string, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to sandbox at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := sender.Send(ctx, &Request{Method: http.MethodGet, URL: url})
		if err == nil {
			fmt.Fprintln(output)
			fmt.Fprintf(output, "Sandbox responded with HTTP %d\n", resp.Status)
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(output)
			return ctx.Err()
		case <-time.After(preflightPollInterval):
		}
	}
}
