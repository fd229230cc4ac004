package binding

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return v
}

func TestInterpolateJSONData(t *testing.T) {
	data := decode(t, `{"user":{"name":"Ada"},"items":[{"qty":2},{"qty":1.5}]}`)
	got := Interpolate("Hi ${user.name}, ${ items[1].qty } and ${items[0].qty}", data)
	if want := "Hi Ada, 1.5 and 2"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInterpolateKeepsUnknownPlaceholders(t *testing.T) {
	data := decode(t, `{"a":[1]}`)
	for _, in := range []string{"${missing}", "${a[3]}", "${a.b}", "${a[x]}"} {
		if got := Interpolate(in, data); got != in {
			t.Fatalf("Interpolate(%q) = %q, want it unchanged", in, got)
		}
	}
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("nil data should leave text alone, got %q", got)
	}
}

func TestInterpolateMarkupEscapes(t *testing.T) {
	data := map[string]any{"company": "Smith & <Sons>"}
	got := InterpolateMarkup("<b>${company}</b>", data)
	if want := "<b>Smith &amp; &lt;Sons&gt;</b>"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInterpolateStructs(t *testing.T) {
	type line struct {
		Label string `json:"label"`
		Price int
	}
	data := &struct {
		Lines []line `json:"lines"`
		Tags  map[string]string
	}{
		Lines: []line{{Label: "tea", Price: 3}},
		Tags:  map[string]string{"kind": "drink"},
	}
	got := Interpolate("${lines[0].label}=${lines[0].Price} ${Tags.kind}", data)
	if want := "tea=3 drink"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
