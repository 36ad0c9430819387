package hub

import "testing"

type dropSink struct{}

func (dropSink) Send([]byte) bool { return false }

func TestConnectionsBindAndReplace(t *testing.T) {
	conns := NewConnections()
	conns.Attach("a", &recorder{})
	conns.Attach("b", &recorder{})

	if replaced := conns.Bind("a", "ROOM01", "p1"); replaced != "" {
		t.Fatalf("first bind replaced %q", replaced)
	}
	if got, ok := conns.ConnFor("ROOM01", "p1"); !ok || got != "a" {
		t.Fatalf("ConnFor = %q, %v", got, ok)
	}
	if replaced := conns.Bind("b", "ROOM01", "p1"); replaced != "a" {
		t.Fatalf("replaced = %q, want a", replaced)
	}
	if _, ok := conns.Lookup("a"); ok {
		t.Fatal("replaced connection still bound")
	}
	if got, _ := conns.ConnFor("ROOM01", "p1"); got != "b" {
		t.Fatalf("ConnFor = %q, want b", got)
	}

	b, ok := conns.Detach("b")
	if !ok || b.Code != "ROOM01" || b.PlayerID != "p1" {
		t.Fatalf("Detach = %+v, %v", b, ok)
	}
	if _, ok := conns.ConnFor("ROOM01", "p1"); ok {
		t.Fatal("seat still mapped after detach")
	}
	if conns.Count() != 1 {
		t.Fatalf("Count = %d, want 1", conns.Count())
	}
}

func TestConnectionsUnbindKeepsNewerSeatOwner(t *testing.T) {
	conns := NewConnections()
	conns.Bind("old", "ROOM01", "p1")
	conns.Bind("new", "ROOM01", "p1")
	conns.Unbind("old")
	if got, ok := conns.ConnFor("ROOM01", "p1"); !ok || got != "new" {
		t.Fatalf("ConnFor = %q, %v", got, ok)
	}
}

func TestConnectionsSend(t *testing.T) {
	conns := NewConnections()
	rec := &recorder{}
	conns.Attach("a", rec)
	conns.Attach("slow", dropSink{})

	if !conns.Send("a", []byte(`{"type":"roomUpdated"}`)) {
		t.Fatal("Send to live sink failed")
	}
	if rec.count(MsgRoomUpdated) != 1 {
		t.Fatalf("frames = %v", rec.types())
	}
	if conns.Send("slow", []byte(`{}`)) {
		t.Fatal("full sink should report a drop")
	}
	if conns.Send("gone", []byte(`{}`)) {
		t.Fatal("unknown connection should report a drop")
	}
}
