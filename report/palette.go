package report

const (
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
	ansiReset   = "\x1b[0m"
)

// Palette holds the escape sequences for each field of a dump. The zero
// value prints plain text.
type Palette struct {
	Head    string
	Panic   string
	Pointer string
	Bytes   string
	File    string
	Func    string
	Line    string
	Reset   string
}

// Options controls rendering.
type Options struct {
	Color bool
}

// Palette returns the escape sequences selected by o.
func (o Options) Palette() Palette {
	if !o.Color {
		return Palette{}
	}
	return Palette{
		Head:    ansiRed,
		Panic:   ansiRed,
		Pointer: ansiMagenta,
		Bytes:   ansiBlue,
		File:    ansiGreen,
		Func:    ansiYellow,
		Line:    ansiCyan,
		Reset:   ansiReset,
	}
}
