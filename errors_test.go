package bind

import (
	"errors"
	"strings"
	"testing"

	binderrors "github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
)

func assertErrorHas(t *testing.T, err, wantSentinel error, kv map[binderrors.Key]string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, wantSentinel) {
		t.Fatalf("expected sentinel %v, got %v", wantSentinel, err)
	}
	msg := err.Error()
	for k, v := range kv {
		needle := string(k) + ": " + v
		if !strings.Contains(msg, needle) {
			t.Fatalf("expected %q in error, got %q", needle, msg)
		}
	}
}

func TestDeclarationErrors(t *testing.T) {
	rt := host.New()
	defer rt.Dispose()
	c := MustClass[point, *point](rt, WithName[point]("Point"))
	if err := c.Method("scale", func(p *point, k int) int { return p.X * k }); err != nil {
		t.Fatalf("Method: %v", err)
	}

	tests := []struct {
		name     string
		err      error
		sentinel error
		kv       map[binderrors.Key]string
	}{
		{
			name:     "duplicate binding",
			err:      func() error { _, err := NewClass[point, *point](rt); return err }(),
			sentinel: ErrDuplicateBinding,
			kv:       map[binderrors.Key]string{binderrors.ErrorFieldClassName: "Point"},
		},
		{
			name:     "unknown field",
			err:      c.Field("z", "Z"),
			sentinel: ErrFieldNotFound,
			kv: map[binderrors.Key]string{
				binderrors.ErrorFieldMemberName: "z",
				binderrors.ErrorFieldFieldPath:  "Z",
			},
		},
		{
			name:     "path through a non-struct",
			err:      c.Field("hidden", "X.y"),
			sentinel: ErrFieldNotFound,
			kv:       map[binderrors.Key]string{binderrors.ErrorFieldFieldPath: "X.y"},
		},
		{
			name:     "unreachable receiver",
			err:      c.Property("other", func(*untracked) int { return 0 }),
			sentinel: ErrUnreachableReceiver,
			kv: map[binderrors.Key]string{
				binderrors.ErrorFieldClassName:  "Point",
				binderrors.ErrorFieldMemberName: "other",
			},
		},
		{
			name:     "constructor result",
			err:      c.Constructor(func() *untracked { return nil }),
			sentinel: ErrInvalidCallable,
			kv:       map[binderrors.Key]string{binderrors.ErrorFieldArgWant: "func(...) *bind.point"},
		},
		{
			name:     "method is not a function",
			err:      c.Method("m", 3),
			sentinel: ErrInvalidCallable,
			kv:       map[binderrors.Key]string{binderrors.ErrorFieldMemberName: "m"},
		},
		{
			name:     "no constructor",
			err:      func() error { _, err := c.New(); return err }(),
			sentinel: ErrNoConstructor,
			kv:       map[binderrors.Key]string{binderrors.ErrorFieldClassName: "Point"},
		},
		{
			name:     "argument count",
			err:      callOn(t, rt, c, "scale"),
			sentinel: ErrArgumentCount,
			kv: map[binderrors.Key]string{
				binderrors.ErrorFieldArgWant: "1",
				binderrors.ErrorFieldArgGot:  "0",
			},
		},
		{
			name:     "argument type",
			err:      callOn(t, rt, c, "scale", 1.5),
			sentinel: ErrArgumentType,
			kv: map[binderrors.Key]string{
				binderrors.ErrorFieldArgIndex: "0",
				binderrors.ErrorFieldArgWant:  "int",
				binderrors.ErrorFieldArgGot:   "number",
			},
		},
		{
			name: "already wrapped",
			err: func() error {
				p := &point{}
				if _, err := c.Wrap(p); err != nil {
					return err
				}
				_, err := c.ReferenceExternal(p)
				return err
			}(),
			sentinel: ErrAlreadyWrapped,
			kv:       map[binderrors.Key]string{binderrors.ErrorFieldObjectState: "weak"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrorHas(t, tt.err, tt.sentinel, tt.kv)
		})
	}
}

func callOn(t *testing.T, rt *host.Runtime, c *Class[point, *point], name string, args ...host.Value) error {
	t.Helper()
	obj, err := c.Wrap(&point{X: 2})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	_, err = rt.Call(obj, name, args...)
	return err
}
