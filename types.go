package memdebug

import "github.com/hupe1980/memdebug/internal/record"

// CallSite is the source location an allocation is attributed to.
type CallSite = record.CallSite

// Record describes one live allocation.
type Record = record.Record

// Caller returns the call site skip frames above the caller of Caller.
// It returns the zero CallSite when tracking is compiled out.
func Caller(skip int) CallSite {
	if !Enabled {
		return CallSite{}
	}
	return record.Caller(skip + 1)
}
