package content

import "testing"

func TestComponentTypes(t *testing.T) {
	tests := []struct {
		name             string
		c                Component
		retain, ins, del bool
	}{
		{"retain", Component{Retain: 3}, true, false, false},
		{"insert", Component{Insert: "ab"}, false, true, false},
		{"delete", Component{Delete: 2}, false, false, true},
		{"empty", Component{}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.c.IsRetain() != tt.retain || tt.c.IsInsert() != tt.ins || tt.c.IsDelete() != tt.del {
				t.Errorf("%+v: retain=%v insert=%v delete=%v", tt.c, tt.c.IsRetain(), tt.c.IsInsert(), tt.c.IsDelete())
			}
		})
	}
}

func TestOperation_Lengths(t *testing.T) {
	op := Operation{Ops: []Component{{Retain: 2}, {Insert: "héllo"}, {Delete: 3}, {Retain: 1}}}
	if got := op.BaseLen(); got != 6 {
		t.Errorf("BaseLen = %d, want 6", got)
	}
	if got := op.TargetLen(); got != 8 {
		t.Errorf("TargetLen = %d, want 8", got)
	}
	if op.IsNoop() {
		t.Error("IsNoop = true for an operation with inserts")
	}
	if !(Operation{Ops: []Component{{Retain: 4}}}).IsNoop() {
		t.Error("retain-only operation should be a noop")
	}
}

func TestApplyText(t *testing.T) {
	tests := []struct {
		name string
		text string
		op   Operation
		want string
	}{
		{"insert at start", "world", NewInsert(0, "hello ", 5), "hello world"},
		{"insert at end", "hello", NewInsert(5, "!", 5), "hello!"},
		{"delete middle", "abcdef", NewDelete(2, 2, 6), "abef"},
		{"multibyte", "héllo", NewDelete(1, 1, 5), "hllo"},
		{"into empty", "", NewInsert(0, "# ", 0), "# "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyText(tt.text, tt.op)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyText_LengthMismatch(t *testing.T) {
	if _, err := ApplyText("hi", NewInsert(0, "x", 10)); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestOperation_Caret(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want int
	}{
		{"insert in middle", NewInsert(2, "xy", 5), 4},
		{"delete in middle", NewDelete(2, 2, 5), 2},
		{"retain only", Operation{Ops: []Component{{Retain: 3}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Caret(); got != tt.want {
				t.Errorf("Caret = %d, want %d", got, tt.want)
			}
		})
	}
}
