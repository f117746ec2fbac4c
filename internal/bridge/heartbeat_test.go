package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/scandeer/printbridge/internal/printer"
)

// fakePublisher records published heartbeats.
type fakePublisher struct {
	mu        sync.Mutex
	connected bool
	published [][]byte
	topics    []string
}

func (p *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, append([]byte(nil), payload...))
	p.topics = append(p.topics, topic)
	return nil
}

func (p *fakePublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func (p *fakePublisher) last() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.published) == 0 {
		return nil
	}
	return p.published[len(p.published)-1]
}

// fakeProbe is a canned printer session.
type fakeProbe struct {
	status    printer.Status
	connected bool
}

func (p *fakeProbe) Status() printer.Status { return p.status }
func (p *fakeProbe) Connected() bool        { return p.connected }

func TestReporter_PublishNow(t *testing.T) {
	pub := &fakePublisher{connected: true}
	r := NewReporter(ReporterConfig{
		PrinterID: "printer-front-01",
		Topic:     "cafe/pt/printer-front-01/h",
		QoS:       1,
		Publisher: pub,
		Printer:   &fakeProbe{status: printer.StatusReady, connected: true},
	})

	if err := r.PublishNow(); err != nil {
		t.Fatalf("PublishNow() error = %v", err)
	}
	if pub.count() != 1 {
		t.Fatalf("published = %d, want 1", pub.count())
	}

	var rec HeartbeatRecord
	if err := json.Unmarshal(pub.last(), &rec); err != nil {
		t.Fatalf("heartbeat is not valid JSON: %v", err)
	}
	if rec.PrinterID != "printer-front-01" {
		t.Errorf("printer_id = %q", rec.PrinterID)
	}
	if rec.ESP32Status != "online" {
		t.Errorf("esp32_status = %q, want online", rec.ESP32Status)
	}
	if !rec.PrinterOnline || rec.PrinterStatus != "ready" {
		t.Errorf("printer snapshot = %v/%q, want online/ready", rec.PrinterOnline, rec.PrinterStatus)
	}
	if !rec.Details.MQTTConnected {
		t.Error("details.mqtt_connected = false, want true")
	}
	if rec.TimestampMS == 0 {
		t.Error("timestamp_ms missing")
	}
}

func TestReporter_NeverPublishesWhileDisconnected(t *testing.T) {
	pub := &fakePublisher{connected: false}
	r := NewReporter(ReporterConfig{
		PrinterID: "printer-1",
		Topic:     "t/h",
		Publisher: pub,
		Printer:   &fakeProbe{},
	})

	if err := r.PublishNow(); err != nil {
		t.Fatalf("PublishNow() error = %v", err)
	}
	if pub.count() != 0 {
		t.Errorf("published = %d, want 0 while disconnected", pub.count())
	}
}

func TestReporter_PaperOutSnapshot(t *testing.T) {
	pub := &fakePublisher{connected: true}
	r := NewReporter(ReporterConfig{
		PrinterID: "printer-1",
		Topic:     "t/h",
		Publisher: pub,
		Printer:   &fakeProbe{status: printer.StatusPaperOut, connected: true},
	})

	r.PublishNow()

	var rec HeartbeatRecord
	json.Unmarshal(pub.last(), &rec)
	if rec.Details.PaperPresent {
		t.Error("details.paper_present = true with status paper_out")
	}
	if !rec.Details.CoverClosed || !rec.Details.CutterOK {
		t.Error("unrelated detail flags should stay healthy")
	}
}

func TestReporter_StartPublishesImmediately(t *testing.T) {
	pub := &fakePublisher{connected: true}
	r := NewReporter(ReporterConfig{
		PrinterID: "printer-1",
		Topic:     "t/h",
		Interval:  time.Hour, // only the immediate publish can fire
		Publisher: pub,
		Printer:   &fakeProbe{status: printer.StatusReady, connected: true},
	})

	r.Start(context.Background())
	defer r.Stop()

	deadline := time.After(2 * time.Second)
	for pub.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no heartbeat within 2s of Start")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestReporter_StopIsIdempotent(t *testing.T) {
	r := NewReporter(ReporterConfig{
		PrinterID: "printer-1",
		Topic:     "t/h",
		Publisher: &fakePublisher{},
	})

	r.Start(context.Background())
	r.Stop()
	r.Stop() // must not panic
}

func TestReporter_TickerPublishes(t *testing.T) {
	pub := &fakePublisher{connected: true}
	r := NewReporter(ReporterConfig{
		PrinterID: "printer-1",
		Topic:     "t/h",
		Interval:  10 * time.Millisecond,
		Publisher: pub,
		Printer:   &fakeProbe{status: printer.StatusReady, connected: true},
	})

	r.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if pub.count() < 3 {
		t.Errorf("published = %d over 100ms at 10ms interval, want several", pub.count())
	}
}
