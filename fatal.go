package memdebug

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/memdebug/report"
)

// Abort reports a fatal fault and terminates the process with the exit code
// of err. The diagnostic is written to the Debugger's output, logged and
// counted before the exit function runs. Abort never returns: if the exit
// function does, Abort panics with err.
func (d *Debugger) Abort(err error) {
	d.outMu.Lock()
	if werr := d.writeDiagnostic(d.out, err); werr != nil {
		d.logger.Warn("fault diagnostic failed", "error", werr)
	}
	d.outMu.Unlock()

	d.logger.LogFault(context.Background(), err)
	d.metrics.RecordFault(FaultOf(err))
	d.exit(ExitCode(err))
	panic(err)
}

func (d *Debugger) writeDiagnostic(w io.Writer, err error) error {
	p := d.reportO.Palette()

	switch e := err.(type) {
	case *InvalidReleaseError:
		_, werr := fmt.Fprintf(w,
			"%s\nMEMORY PANIC: Tried to %s() an invalid pointer.\n%s"+
				"%sPointer: %#x\n%s"+
				"%sOn line: %d\n%s"+
				"%sIn function: %s()\n%s"+
				"%sIn file: %s\n%s"+
				"%sAborted.\n%s",
			p.Panic, e.Op, p.Reset,
			p.Pointer, e.Addr, p.Reset,
			p.Line, e.Site.Line, p.Reset,
			p.Func, e.Site.Function, p.Reset,
			p.File, e.Site.File, p.Reset,
			p.Panic, p.Reset)
		return werr

	case *OutOfMemoryError:
		_, werr := fmt.Fprintf(w,
			"%s\n*****************\n* Out of Memory *\n*****************\n%s"+
				"%sIn file: %s\n%s"+
				"%sIn function: %s()\n%s"+
				"%sOn line: %d\n%s"+
				"%sCould not allocate %d bytes.\n%s",
			p.Panic, p.Reset,
			p.File, e.Site.File, p.Reset,
			p.Func, e.Site.Function, p.Reset,
			p.Line, e.Site.Line, p.Reset,
			p.Bytes, e.Size, p.Reset)
		if werr != nil {
			return werr
		}
		return report.WriteLowMem(w, d.table, d.reportO)

	case *ArenaOverflowError:
		_, werr := fmt.Fprintf(w,
			"%sImpossible to allocate %d bytes on arena: %s. Error inside %s() on line %d in %s.\n%s",
			p.Panic, e.Size, e.Arena, e.Site.Function, e.Site.Line, e.Site.File, p.Reset)
		return werr

	default:
		_, werr := fmt.Fprintf(w, "%s\nFATAL: %v\n%s", p.Panic, err, p.Reset)
		return werr
	}
}
