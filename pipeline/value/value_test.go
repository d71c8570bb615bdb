package value

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := NewMap().
		Set("zeta", Int(1)).
		Set("alpha", Int(2)).
		Set("mid", Int(3)).
		Set("zeta", Int(4))

	got := strings.Join(m.Keys(), ",")
	if got != "zeta,alpha,mid" {
		t.Errorf("Keys = %s", got)
	}
	v, err := m.Get("zeta")
	if err != nil {
		t.Fatal(err)
	}
	if i, _ := v.AsInt(); i != 4 {
		t.Errorf("zeta = %d, want 4", i)
	}
}

func TestCheckedAccessors(t *testing.T) {
	m := NewMap().Set("name", String("hero")).Set("count", Int(3))

	if _, err := m.Get("missing"); !errors.Is(err, ErrMissingField) {
		t.Errorf("Get(missing) err = %v", err)
	}
	if _, err := m.GetSeq("name"); !errors.Is(err, ErrType) {
		t.Errorf("GetSeq(name) err = %v", err)
	}
	if s, err := m.GetString("name"); err != nil || s != "hero" {
		t.Errorf("GetString = %q, %v", s, err)
	}
	if f, err := Int(3).AsFloat(); err != nil || f != 3 {
		t.Errorf("Int.AsFloat = %v, %v", f, err)
	}
	if _, err := Int(1 << 40).AsInt32(); !errors.Is(err, ErrType) {
		t.Errorf("AsInt32 overflow err = %v", err)
	}
	if i, err := Int(-875704794).AsInt32(); err != nil || i != -875704794 {
		t.Errorf("AsInt32 = %d, %v", i, err)
	}
	var nilMap *Map
	if nilMap.Has("x") || nilMap.Len() != 0 {
		t.Error("nil map should behave as empty")
	}
}

func TestPath(t *testing.T) {
	ref := NewMap().Set("m_FileID", Int(0)).Set("m_PathID", Int(77))
	entry := NewMap().Set("m_identifier", String("icon_sword")).Set("m_originalSprite", FromMap(ref))

	v, err := entry.Path("m_originalSprite", "m_PathID")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if id, _ := v.AsInt(); id != 77 {
		t.Errorf("m_PathID = %d", id)
	}
	if _, err := entry.Path("m_identifier", "m_PathID"); !errors.Is(err, ErrType) {
		t.Errorf("Path through string err = %v", err)
	}
	if _, err := entry.Path("m_originalSprite", "nope"); !errors.Is(err, ErrMissingField) {
		t.Errorf("Path missing err = %v", err)
	}
}

func TestJSONRoundTripKeepsOrder(t *testing.T) {
	in := `{"b":1,"a":[true,null,"x",2.5],"c":{"z":-3,"y":{}}}`
	var v Value
	if err := v.UnmarshalJSON([]byte(in)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != in {
		t.Errorf("round trip:\n got %s\nwant %s", out, in)
	}

	m, _ := v.AsMap()
	c, _ := m.Get("c")
	cm, _ := c.AsMap()
	z, _ := cm.Get("z")
	if z.Kind() != KindInt {
		t.Errorf("z kind = %s, want int", z.Kind())
	}
	a, _ := m.GetSeq("a")
	if a[3].Kind() != KindFloat {
		t.Errorf("2.5 kind = %s, want float", a[3].Kind())
	}
}

func TestMarshalNonFiniteFloats(t *testing.T) {
	v := Seq(Float(math.NaN()), Float(math.Inf(1)), Float(math.Inf(-1)), Float(0.5))
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if want := `["NaN","Infinity","-Infinity",0.5]`; string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestUnmarshalRejectsTrailingData(t *testing.T) {
	var v Value
	if err := v.UnmarshalJSON([]byte(`{} {}`)); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestDump(t *testing.T) {
	m := NewMap().
		Set("m_Name", String("table")).
		Set("Entries", Seq(FromMap(NewMap().Set("m_identifier", String("a"))))).
		Set("scale", Float(1.5))

	got := DumpString(FromMap(m))
	want := "m_Name = \"table\"\n" +
		"Entries [1]\n" +
		"\t[0] {1}\n" +
		"\t\tm_identifier = \"a\"\n" +
		"scale = 1.5\n"
	if got != want {
		t.Errorf("Dump:\n%s\nwant:\n%s", got, want)
	}
}
