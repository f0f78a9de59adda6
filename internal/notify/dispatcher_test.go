package notify

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	supported bool
	err       error
	shown     []Notification
	clicks    []func()
}

func (p *fakeProvider) Supported() bool { return p.supported }

func (p *fakeProvider) Show(n Notification, onClick func()) error {
	if p.err != nil {
		return p.err
	}
	p.shown = append(p.shown, n)
	p.clicks = append(p.clicks, onClick)
	return nil
}

func (p *fakeProvider) Close() error { return nil }

type fakeWindow struct {
	alive   bool
	focused int
}

func (w *fakeWindow) Focus() bool {
	if !w.alive {
		return false
	}
	w.focused++
	return true
}

func TestDispatcherShowsNotification(t *testing.T) {
	p := &fakeProvider{supported: true}
	d := NewDispatcher(p, &fakeWindow{alive: true}, zerolog.Nop(), WithIcon("/icons/thelounge.png"))

	d.OnBridgeMessage("Alice", "hi")

	require.Len(t, p.shown, 1)
	n := p.shown[0]
	assert.Equal(t, "Alice", n.Title)
	assert.Equal(t, "hi", n.Body)
	assert.Equal(t, "/icons/thelounge.png", n.Icon)
	assert.NotEmpty(t, n.ID)
}

func TestDispatcherNoDedupe(t *testing.T) {
	p := &fakeProvider{supported: true}
	d := NewDispatcher(p, nil, zerolog.Nop())

	for i := 0; i < 3; i++ {
		d.OnBridgeMessage("same", "same")
	}

	require.Len(t, p.shown, 3)
	assert.NotEqual(t, p.shown[0].ID, p.shown[1].ID)
}

func TestDispatcherUnsupportedLogsDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	p := &fakeProvider{supported: false}
	d := NewDispatcher(p, nil, zerolog.New(&buf))

	assert.NotPanics(t, func() { d.OnBridgeMessage("Alice", "hi") })

	assert.Empty(t, p.shown)
	assert.Contains(t, buf.String(), "notifications not supported on this system")
}

func TestDispatcherShowErrorIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	p := &fakeProvider{supported: true, err: errors.New("bus gone")}
	d := NewDispatcher(p, nil, zerolog.New(&buf))

	d.OnBridgeMessage("Alice", "hi")
	assert.Contains(t, buf.String(), "bus gone")
}

func TestDispatcherMute(t *testing.T) {
	p := &fakeProvider{supported: true}
	d := NewDispatcher(p, nil, zerolog.Nop(), WithEnabled(false))
	assert.False(t, d.Enabled())

	d.OnBridgeMessage("a", "1")
	d.SetEnabled(true)
	d.OnBridgeMessage("b", "2")

	require.Len(t, p.shown, 1)
	assert.Equal(t, "b", p.shown[0].Title)
}

func TestDispatcherSetIcon(t *testing.T) {
	p := &fakeProvider{supported: true}
	d := NewDispatcher(p, nil, zerolog.Nop())
	d.SetIcon("/new.png")
	d.OnBridgeMessage("a", "1")
	assert.Equal(t, "/new.png", p.shown[0].Icon)
}

func TestClickFocusesWindow(t *testing.T) {
	p := &fakeProvider{supported: true}
	w := &fakeWindow{alive: true}
	d := NewDispatcher(p, w, zerolog.Nop())

	d.OnBridgeMessage("a", "1")
	require.Len(t, p.clicks, 1)
	p.clicks[0]()
	assert.Equal(t, 1, w.focused)

	w.alive = false
	assert.NotPanics(t, p.clicks[0])
	assert.Equal(t, 1, w.focused)
}

func TestClickWithoutWindow(t *testing.T) {
	p := &fakeProvider{supported: true}
	d := NewDispatcher(p, nil, zerolog.Nop())
	d.OnBridgeMessage("a", "1")
	assert.NotPanics(t, p.clicks[0])
}

func TestInstallIcon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "icon.png")

	require.NoError(t, InstallIcon(path, []byte("one")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))

	require.NoError(t, InstallIcon(path, []byte("one")))
	require.NoError(t, InstallIcon(path, []byte("two")))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}
