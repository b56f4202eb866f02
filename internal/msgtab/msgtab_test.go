package msgtab

import (
	"bytes"
	"testing"
)

func TestBuild(t *testing.T) {
	tab, err := Build([]byte("TCB"), []byte("RNR"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := "TCB\x00RNR\x00\x00"; string(tab) != want {
		t.Fatalf("table = %q, want %q", tab, want)
	}

	if _, err := Build([]byte("ok"), nil); err == nil {
		t.Error("Build should reject empty messages")
	}
	if _, err := Build([]byte("a\x00b")); err == nil {
		t.Error("Build should reject embedded terminators")
	}
}

func TestCycle(t *testing.T) {
	tab := Table("T\x81echli\x00Z\x84pfli\x00TCB\x00\x00")
	c := NewCycle(tab)

	want := []string{"T\x81echli\x00", "Z\x84pfli\x00", "TCB\x00", "T\x81echli\x00", "Z\x84pfli\x00"}
	for i, w := range want {
		got, ok := c.Next()
		if !ok {
			t.Fatalf("Next %d: no entry", i)
		}
		if string(got) != w {
			t.Errorf("Next %d = %q, want %q", i, got, w)
		}
	}
}

func TestCycleEmpty(t *testing.T) {
	for _, tab := range []Table{nil, Table("\x00"), Table("\x00\x00")} {
		if _, ok := NewCycle(tab).Next(); ok {
			t.Errorf("Next on %q returned an entry", tab)
		}
	}
}

func TestCycleUnterminated(t *testing.T) {
	c := NewCycle(Table("ab\x00cd"))
	for i, w := range []string{"ab\x00", "cd", "ab\x00"} {
		got, ok := c.Next()
		if !ok || string(got) != w {
			t.Errorf("Next %d = %q, %v, want %q", i, got, ok, w)
		}
	}
}

func TestEntries(t *testing.T) {
	got := Table("Fuck\x00Yeah\x00\x00ignored\x00").Entries()
	want := [][]byte{[]byte("Fuck"), []byte("Yeah")}
	if len(got) != len(want) {
		t.Fatalf("Entries() = %q, want %q", got, want)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEncode(t *testing.T) {
	got, err := Encode("Tüchli Zäpfli")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := "T\x81chli Z\x84pfli"; string(got) != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}

	if _, err := Encode("snow ☃"); err == nil {
		t.Error("Encode should reject runes outside CP437")
	}
}
