package email

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ConsoleTransport prints messages instead of sending them. Used in
// development and tests.
type ConsoleTransport struct {
	mu         sync.Mutex
	out        io.Writer
	from       mail.Address
	subjPrefix string
}

func NewConsoleTransport(out io.Writer, appName, fromAddress string) *ConsoleTransport {
	return &ConsoleTransport{
		out:        out,
		from:       mail.Address{Name: appName, Address: fromAddress},
		subjPrefix: "[" + appName + "] ",
	}
}

func (t *ConsoleTransport) Deliver(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "From: %s\r\n", t.from.String())
	_, _ = fmt.Fprintf(body, "To: %s\r\n", msg.To.String())
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", t.subjPrefix+msg.Subject)
	_, _ = fmt.Fprint(body, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.TextContent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.out, body.String()); err != nil {
		return errors.Wrap(err, "writing console email")
	}
	return nil
}
