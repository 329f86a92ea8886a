package probe

import (
	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"

	"github.com/nerrf-dev/probed/internal/config"
	"github.com/nerrf-dev/probed/internal/nerrferr"
	"github.com/nerrf-dev/probed/internal/registry"
)

// jniSymbols names the four JNI reference table entry points instrumented
// as simple entry-only uprobes (no matching return probe is needed; each
// call site directly reports a +1/-1 delta on local or global reference
// count), grounded on the original daemon's jni_reference_feature.rs.
var jniSymbols = [...]string{
	"_ZN3art9JNIEnvExt11AddLocalRefINS_6mirror6ObjectEEEP8_jobjectPT_",
	"_ZN3art9JNIEnvExt14DeleteLocalRefEP8_jobject",
	"_ZN3art12JavaVMExt13AddGlobalRefEPNS_6ThreadEPNS_6mirror6ObjectE",
	"_ZN3art12JavaVMExt16DeleteGlobalRefEPNS_6ThreadEP8_jobject",
}

// JniReferencesFeature instruments local/global JNI reference table
// mutation, all four via entry-only uprobes against the same pinned
// libart.so used by GarbageCollectFeature.
type JniReferencesFeature struct {
	progs    [len(jniSymbols)]*registry.Guard[*ebpf.Program]
	resolver SymbolResolver

	exe   *link.Executable
	links [len(jniSymbols)]link.Link
}

var _ Feature = (*JniReferencesFeature)(nil)

// NewJniReferencesFeature takes one program guard per symbol in
// jniSymbols, in the same order: AddLocalRef, DeleteLocalRef,
// AddGlobalRef, DeleteGlobalRef.
func NewJniReferencesFeature(progs [len(jniSymbols)]*registry.Guard[*ebpf.Program]) *JniReferencesFeature {
	return &JniReferencesFeature{progs: progs, resolver: DefaultSymbolResolver}
}

func (f *JniReferencesFeature) Name() config.FeatureName { return config.FeatureJNI }

func (f *JniReferencesFeature) Attach() error {
	if f.exe == nil {
		exe, err := link.OpenExecutable(artLibraryPath)
		if err != nil {
			return &nerrferr.AttachError{Feature: string(f.Name()), AttachPoint: artLibraryPath, Err: err}
		}
		f.exe = exe
	}

	for i, sym := range jniSymbols {
		if f.links[i] != nil {
			continue
		}
		l, err := f.resolver.Uprobe(f.exe, sym, *f.progs[i].Get())
		if err != nil {
			return &nerrferr.AttachError{Feature: string(f.Name()), AttachPoint: sym, Err: err}
		}
		f.links[i] = l
	}

	return nil
}

func (f *JniReferencesFeature) Detach() {
	for i := range f.links {
		closeLink(&f.links[i])
	}
}

func (f *JniReferencesFeature) Attached() bool {
	for _, l := range f.links {
		if l == nil {
			return false
		}
	}
	return true
}

func (f *JniReferencesFeature) Apply(cfg *config.FeatureCfg, _ []uint32) error {
	if cfg == nil {
		f.Detach()
		return nil
	}
	return f.Attach()
}
