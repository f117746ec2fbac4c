package printer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/scandeer/printbridge/internal/escpos"
)

// Spooler command timeouts.
const (
	sendTimeout  = 10 * time.Second
	probeTimeout = 5 * time.Second
)

// sendFunc hands one complete raw document to the spooler.
type sendFunc func(queue string, data []byte) error

// probeFunc asks the spooler about a queue's condition.
type probeFunc func(queue string) (string, error)

// BufferedQueue accumulates a document's ESC/POS bytes in memory and
// ships them to a CUPS queue as one raw job on Flush. Buffering keeps a
// document atomic: a half-rendered job never reaches the spooler.
type BufferedQueue struct {
	queue   string
	buf     bytes.Buffer
	tracker formatTracker
	send    sendFunc
	probe   probeFunc
}

// NewBufferedQueue creates a backend for the named spooler queue.
func NewBufferedQueue(queue string) *BufferedQueue {
	return &BufferedQueue{
		queue:   queue,
		tracker: newFormatTracker(),
		send:    lpSend,
		probe:   lpstatProbe,
	}
}

// lpSend pipes the document to lp in raw mode so the spooler does not
// filter the ESC/POS bytes.
func lpSend(queue string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "lp", "-d", queue, "-o", "raw")
	cmd.Stdin = bytes.NewReader(data)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: lp -d %s: %v: %s", ErrQueueSend, queue, err, bytes.TrimSpace(out))
	}
	return nil
}

// lpstatProbe returns lpstat's one-line description of the queue.
func lpstatProbe(queue string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "lpstat", "-p", queue, "-l").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: lpstat -p %s: %v", ErrStatusProbe, queue, err)
	}
	return string(out), nil
}

// Init resets the tracked state and buffers ESC @ as the document opener.
func (q *BufferedQueue) Init() error {
	q.tracker.reset()
	q.buf.Write(escpos.InitSequence())
	return nil
}

func (q *BufferedQueue) SetAlign(a escpos.Alignment) error {
	if q.tracker.needAlign(a) {
		q.buf.Write(escpos.AlignSequence(a))
	}
	return nil
}

func (q *BufferedQueue) SetBold(on bool) error {
	if q.tracker.needBold(on) {
		q.buf.Write(escpos.BoldSequence(on))
	}
	return nil
}

func (q *BufferedQueue) SetSize(size int) error {
	if q.tracker.needSize(size) {
		q.buf.Write(escpos.SizeSequence(size))
	}
	return nil
}

func (q *BufferedQueue) WriteText(text string) error {
	q.buf.WriteString(text)
	return nil
}

func (q *BufferedQueue) WriteRaw(data []byte) error {
	q.buf.Write(data)
	return nil
}

func (q *BufferedQueue) Cut() error {
	q.buf.Write(escpos.CutSequence())
	return nil
}

// Flush sends the buffered document as one raw job. The buffer is
// cleared on failure as well: a job the spooler rejected is dropped
// whole rather than replayed in fragments on the next document.
func (q *BufferedQueue) Flush() error {
	if q.buf.Len() == 0 {
		return nil
	}
	data := q.buf.Bytes()
	err := q.send(q.queue, data)
	q.buf.Reset()
	return err
}

// Close ships any remaining buffered bytes.
func (q *BufferedQueue) Close() error {
	return q.Flush()
}

// probeStatus maps the spooler's report onto a printer status.
func (q *BufferedQueue) probeStatus() (Status, error) {
	out, err := q.probe(q.queue)
	if err != nil {
		return StatusOffline, err
	}
	return parseQueueStatus(out), nil
}
