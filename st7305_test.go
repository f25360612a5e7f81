package st7305

import (
	"bytes"
	"fmt"
	"image"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/kylehase/st7305/image1bit"
)

// logConn records every SPI write into a shared event log so that the test
// can assert ordering of bus writes against pin toggles and delays.
type logConn struct {
	log *[]string
}

func (c *logConn) String() string {
	return "logconn"
}

func (c *logConn) Tx(w, r []byte) error {
	*c.log = append(*c.log, fmt.Sprintf("tx %x", w))
	return nil
}

func (c *logConn) Duplex() conn.Duplex {
	return conn.Half
}

// logPin records level changes into the shared event log.
type logPin struct {
	gpiotest.Pin
	log *[]string
}

func (p *logPin) Out(l gpio.Level) error {
	*p.log = append(*p.log, fmt.Sprintf("%s=%s", p.N, l))
	return p.Pin.Out(l)
}

// newTestDev builds a Dev around the log fakes, bypassing NewSPI so that no
// init sequence pollutes the log.
func newTestDev(t *testing.T, opts *Opts) (*Dev, *[]string) {
	t.Helper()
	g, err := resolveGeometry(opts)
	if err != nil {
		t.Fatal(err)
	}
	m, err := image1bit.NewAddressMap(g.W, g.H, g.Orientation)
	if err != nil {
		t.Fatal(err)
	}
	log := &[]string{}
	d := &Dev{
		c:          &logConn{log: log},
		dc:         &logPin{Pin: gpiotest.Pin{N: "DC"}, log: log},
		cs:         &logPin{Pin: gpiotest.Pin{N: "CS"}, log: log},
		geom:       g,
		img:        image1bit.New(m),
		state:      ActiveHigh,
		lastActive: ActiveHigh,
		sleep: func(d time.Duration) {
			*log = append(*log, "sleep "+d.String())
		},
	}
	return d, log
}

// smallOpts is an 8×8 custom panel so whole frames stay readable in logs.
var smallOpts = &Opts{
	Model: Custom,
	W:     8, H: 8,
	Orientation: image1bit.Portrait,
	ColStart:    0x01, ColEnd: 0x02,
	RowStart: 0x03, RowEnd: 0x04,
}

func TestNewSPI(t *testing.T) {
	port := &spitest.Record{}
	dc := &gpiotest.Pin{N: "DC"}
	cs := &gpiotest.Pin{N: "CS"}

	d, err := NewSPI(port, dc, cs, nil)
	if err != nil {
		t.Fatal(err)
	}

	if d.String() != "st7305.Dev{400x300}" {
		t.Errorf("String() = %q", d.String())
	}
	if d.Bounds() != image.Rect(0, 0, 400, 300) {
		t.Errorf("Bounds() = %v", d.Bounds())
	}
	if d.State() != ActiveHigh {
		t.Errorf("State() = %v, want ActiveHigh", d.State())
	}
	if len(d.Pix()) != 15000 {
		t.Errorf("len(Pix()) = %d, want 15000", len(d.Pix()))
	}

	// The recorded byte stream must be exactly the init sequence:
	// opcode, then parameters, command by command.
	var stream []byte
	for _, op := range port.Ops {
		stream = append(stream, op.W...)
	}
	var want []byte
	for _, c := range initSequence(d.geom) {
		want = append(want, c.op)
		want = append(want, c.args...)
	}
	if !bytes.Equal(stream, want) {
		t.Errorf("init stream = % #x, want % #x", stream, want)
	}
}

func TestNewSPIValidation(t *testing.T) {
	if _, err := NewSPI(&spitest.Record{}, nil, nil, nil); err == nil {
		t.Error("NewSPI should fail without dc and cs pins")
	}
	_, err := NewSPI(&spitest.Record{}, &gpiotest.Pin{N: "DC"}, &gpiotest.Pin{N: "CS"},
		&Opts{Model: Custom, W: 3, H: 3})
	if err == nil {
		t.Error("NewSPI should fail for a custom panel that does not tile")
	}
}

func TestRefreshStream(t *testing.T) {
	d, log := newTestDev(t, smallOpts)

	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"CS=Low", "DC=Low", "tx 38", "CS=High",
		"CS=Low", "DC=Low", "tx 29", "CS=High",
		"CS=Low", "DC=Low", "tx 2a", "DC=High", "tx 0102", "CS=High",
		"CS=Low", "DC=Low", "tx 2b", "DC=High", "tx 0304", "CS=High",
		"CS=Low", "DC=Low", "tx 2c", "DC=High", "tx ffffffffffffffff", "CS=High",
	}
	if len(*log) != len(want) {
		t.Fatalf("refresh produced %d events, want %d:\n%v", len(*log), len(want), *log)
	}
	for i, e := range *log {
		if e != want[i] {
			t.Errorf("event %d = %q, want %q", i, e, want[i])
		}
	}
}

// TestMemoryWriteSingleSelect verifies that chip select stays asserted from
// the memory-write opcode through the last frame byte. A deassertion in
// between would abort the transfer mid-frame.
func TestMemoryWriteSingleSelect(t *testing.T) {
	d, log := newTestDev(t, smallOpts)

	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}

	events := *log
	start := -1
	for i, e := range events {
		if e == "tx 2c" {
			start = i
			break
		}
	}
	if start == -1 {
		t.Fatal("no memory-write command in log")
	}
	end := -1
	for i := start; i < len(events); i++ {
		if events[i] == "CS=High" {
			end = i
			break
		}
	}
	if end == -1 {
		t.Fatal("CS never deasserted after memory write")
	}
	frame := false
	for _, e := range events[start:end] {
		if e == "tx ffffffffffffffff" {
			frame = true
		}
		if e == "CS=Low" || e == "CS=High" {
			t.Errorf("CS toggled mid-transfer: %v", events[start:end])
		}
	}
	if !frame {
		t.Error("frame bytes not sent before CS deassert")
	}
}

func TestSetPixelAndFill(t *testing.T) {
	d, _ := newTestDev(t, smallOpts)

	d.SetPixel(0, 0, true)
	if d.Pix()[0] != 0x7F {
		t.Errorf("Pix()[0] = %#02x after SetPixel(0, 0, true), want 0x7F", d.Pix()[0])
	}
	d.SetPixel(0, 0, false)
	if d.Pix()[0] != 0xFF {
		t.Errorf("Pix()[0] = %#02x after clearing, want 0xFF", d.Pix()[0])
	}

	// Out of range is a silent no-op.
	before := make([]byte, len(d.Pix()))
	copy(before, d.Pix())
	d.SetPixel(-1, 0, true)
	d.SetPixel(d.Width(), 0, true)
	d.SetPixel(0, d.Height(), true)
	if !bytes.Equal(d.Pix(), before) {
		t.Error("out-of-range SetPixel modified the buffer")
	}

	d.Fill(true)
	for i, b := range d.Pix() {
		if b != 0x00 {
			t.Fatalf("Pix()[%d] = %#02x after Fill(true), want 0x00", i, b)
		}
	}
	d.Fill(false)
	for i, b := range d.Pix() {
		if b != 0xFF {
			t.Fatalf("Pix()[%d] = %#02x after Fill(false), want 0xFF", i, b)
		}
	}
}

func TestWrite(t *testing.T) {
	d, _ := newTestDev(t, smallOpts)

	if _, err := d.Write(make([]byte, 3)); err == nil {
		t.Error("Write should fail with wrong buffer size")
	} else if err.Error() != "st7305: invalid buffer size" {
		t.Errorf("Write error = %v", err)
	}

	frame := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}
	n, err := d.Write(frame)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(frame) {
		t.Errorf("Write returned %d, want %d", n, len(frame))
	}
	if !bytes.Equal(d.Pix(), frame) {
		t.Errorf("Pix() = % #x, want % #x", d.Pix(), frame)
	}
}

func TestDraw(t *testing.T) {
	d, _ := newTestDev(t, smallOpts)

	if err := d.Draw(d.Bounds(), image.NewUniform(image1bit.On), image.Point{}); err != nil {
		t.Fatal(err)
	}
	for i, b := range d.Pix() {
		if b != 0x00 {
			t.Fatalf("Pix()[%d] = %#02x after drawing uniform On, want 0x00", i, b)
		}
	}

	// Empty intersection is a no-op.
	d.Fill(false)
	if err := d.Draw(image.Rect(100, 100, 200, 200), image.NewUniform(image1bit.On), image.Point{}); err != nil {
		t.Fatal(err)
	}
	for _, b := range d.Pix() {
		if b != 0xFF {
			t.Fatal("Draw outside the panel modified the buffer")
		}
	}
}

func TestDrawFastPath(t *testing.T) {
	d, _ := newTestDev(t, smallOpts)

	m, err := image1bit.NewAddressMap(8, 8, image1bit.Portrait)
	if err != nil {
		t.Fatal(err)
	}
	src := image1bit.New(m)
	src.SetBit(3, 1, image1bit.On)

	if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(d.Pix(), src.Pix) {
		t.Errorf("Pix() = % #x, want % #x", d.Pix(), src.Pix)
	}
	// (3,1) in a 4×2 tile is bit 0 of byte 0.
	if d.Pix()[0] != 0xFE {
		t.Errorf("Pix()[0] = %#02x, want 0xFE", d.Pix()[0])
	}
}

func TestPowerTransitions(t *testing.T) {
	d, _ := newTestDev(t, smallOpts)

	steps := []struct {
		name string
		op   func() error
		want PowerState
	}{
		{"sleep", d.Sleep, Sleeping},
		{"low power while sleeping is not rejected", d.LowPowerMode, ActiveLow},
		{"sleep again", d.Sleep, Sleeping},
		{"wake resumes high power", d.Wake, ActiveHigh},
		{"low power", d.LowPowerMode, ActiveLow},
		{"display off", d.DisplayOff, Blanked},
		{"display on restores low power", d.DisplayOn, ActiveLow},
		{"high power", d.HighPowerMode, ActiveHigh},
		{"display on while active is unchanged", d.DisplayOn, ActiveHigh},
		{"display off again", d.DisplayOff, Blanked},
		{"high power from blanked", d.HighPowerMode, ActiveHigh},
	}

	for _, s := range steps {
		if err := s.op(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if got := d.State(); got != s.want {
			t.Fatalf("%s: State() = %v, want %v", s.name, got, s.want)
		}
	}
}

func TestPowerCommands(t *testing.T) {
	d, log := newTestDev(t, smallOpts)

	ops := []struct {
		op   func() error
		want string
	}{
		{d.Sleep, "tx 10"},
		{d.Wake, "tx 11"},
		{d.LowPowerMode, "tx 39"},
		{d.HighPowerMode, "tx 38"},
		{d.DisplayOn, "tx 29"},
		{d.DisplayOff, "tx 28"},
	}
	for _, o := range ops {
		*log = (*log)[:0]
		if err := o.op(); err != nil {
			t.Fatal(err)
		}
		found := false
		for _, e := range *log {
			if e == o.want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %q in %v", o.want, *log)
		}
	}
}

// TestWakeDelayOrdering verifies that the mandatory 120ms wake delay blocks
// the caller between the sleep-out command and anything issued after it.
func TestWakeDelayOrdering(t *testing.T) {
	d, log := newTestDev(t, smallOpts)

	if err := d.Wake(); err != nil {
		t.Fatal(err)
	}
	if err := d.HighPowerMode(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"CS=Low", "DC=Low", "tx 11", "CS=High",
		"sleep 120ms",
		"CS=Low", "DC=Low", "tx 38", "CS=High",
	}
	if len(*log) != len(want) {
		t.Fatalf("got %d events, want %d:\n%v", len(*log), len(want), *log)
	}
	for i, e := range *log {
		if e != want[i] {
			t.Errorf("event %d = %q, want %q", i, e, want[i])
		}
	}
}

func TestHalt(t *testing.T) {
	d, log := newTestDev(t, smallOpts)

	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if d.State() != Sleeping {
		t.Errorf("State() = %v after Halt, want Sleeping", d.State())
	}
	found := false
	for _, e := range *log {
		if e == "tx 10" {
			found = true
		}
	}
	if !found {
		t.Error("Halt did not issue sleep-in")
	}

	if err := d.Refresh(); err == nil {
		t.Error("Refresh should fail when halted")
	}
	if _, err := d.Write(make([]byte, 8)); err == nil {
		t.Error("Write should fail when halted")
	}
	if err := d.Draw(d.Bounds(), image.NewUniform(image1bit.On), image.Point{}); err == nil {
		t.Error("Draw should fail when halted")
	}
	if err := d.Sleep(); err == nil {
		t.Error("Sleep should fail when halted")
	}
	if err := d.Wake(); err == nil {
		t.Error("Wake should fail when halted")
	}
	if err := d.LowPowerMode(); err == nil {
		t.Error("LowPowerMode should fail when halted")
	}
	if err := d.HighPowerMode(); err == nil {
		t.Error("HighPowerMode should fail when halted")
	}
	if err := d.DisplayOn(); err == nil {
		t.Error("DisplayOn should fail when halted")
	}
	if err := d.DisplayOff(); err == nil {
		t.Error("DisplayOff should fail when halted")
	}
}

func TestDevAccessors(t *testing.T) {
	d, _ := newTestDev(t, &Opts{Model: Waveshare400x300})

	if d.Width() != 400 || d.Height() != 300 {
		t.Errorf("dimensions = %dx%d", d.Width(), d.Height())
	}
	if d.ColorModel() != image1bit.BitModel {
		t.Error("ColorModel() did not return BitModel")
	}
	if d.String() != "st7305.Dev{400x300}" {
		t.Errorf("String() = %q", d.String())
	}
}

func TestPowerStateString(t *testing.T) {
	tests := []struct {
		s    PowerState
		want string
	}{
		{ActiveHigh, "ActiveHigh"},
		{ActiveLow, "ActiveLow"},
		{Sleeping, "Sleeping"},
		{Blanked, "Blanked"},
		{PowerState(9), "PowerState(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("PowerState.String() = %q, want %q", got, tt.want)
		}
	}
}
