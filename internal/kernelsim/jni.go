package kernelsim

import "github.com/nerrf-dev/probed/internal/wire"

// OnJni handles a JNI reference table mutation. Unlike the other five
// families, JNI has no enter/exit pairing (§8: "except for JNI which is
// single-event") since each of the four instrumented calls reports a
// complete delta on its own.
func (p *Pipeline) OnJni(tid uint32, method wire.JniMethod) bool {
	ctx, allowed := p.allowed(wire.KindJniReferences, tid)
	if !allowed {
		return false
	}

	j := wire.JniReferences{Method: method}
	p.emit(Emitted{Kind: wire.KindJniReferences, Context: ctx, Jni: &j})
	return true
}
