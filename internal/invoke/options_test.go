package invoke

import (
	"os"
	"reflect"
	"testing"

	"github.com/Paintersrp/toolrun/internal/tool"
)

func TestResolveDefaultsStreams(t *testing.T) {
	spec, opts := Options{}.resolve(tool.New("/bin/true").Arg("-q"))

	if opts.Stdout != os.Stdout || opts.Stderr != os.Stderr {
		t.Fatalf("expected standard streams as defaults")
	}
	if spec.Path != "/bin/true" || !reflect.DeepEqual(spec.Args, []string{"-q"}) {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if spec.Env != nil {
		t.Fatalf("nil env map must inherit the caller environment, got %#v", spec.Env)
	}
}

func TestEnvironSlice(t *testing.T) {
	got := environSlice(map[string]string{"B": "2", "A": "1", "PATH": "/bin"})
	want := []string{"A=1", "B=2", "PATH=/bin"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("environSlice = %#v, want %#v", got, want)
	}
	if environSlice(nil) != nil {
		t.Fatalf("nil map must stay nil")
	}
	if got := environSlice(map[string]string{}); got == nil || len(got) != 0 {
		t.Fatalf("empty map must produce an empty slice, got %#v", got)
	}
}
