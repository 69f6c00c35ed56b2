package codec

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

type page struct {
	URL   string    `json:"url" msgpack:"url" cbor:"url"`
	Hits  int64     `json:"hits" msgpack:"hits" cbor:"hits"`
	Fetch time.Time `json:"fetch" msgpack:"fetch" cbor:"fetch"`
}

func TestIntCodec(t *testing.T) {
	b, _ := Int{}.Encode(-123)
	if string(b) != "-123" {
		t.Fatalf("Int.Encode = %q", b)
	}
	n, err := Int{}.Decode([]byte("123"))
	if err != nil || n != 123 {
		t.Fatalf("Int.Decode = %d, %v", n, err)
	}
	if _, err := (Int{}).Decode([]byte("bar")); err == nil {
		t.Fatalf("expected error decoding non-numeric text")
	}
	if _, err := (Int{}).Decode([]byte("3.14")); err == nil {
		t.Fatalf("expected error decoding a float as integer")
	}
}

func TestFloatCodec(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want string
	}{
		{3.14, "3.14"},
		{100, "100"},
		{-0.5, "-0.5"},
	} {
		b, _ := Float{}.Encode(tc.in)
		if string(b) != tc.want {
			t.Fatalf("Float.Encode(%v) = %q want %q", tc.in, b, tc.want)
		}
		f, err := Float{}.Decode(b)
		if err != nil || f != tc.in {
			t.Fatalf("Float.Decode(%q) = %v, %v", b, f, err)
		}
	}
	if _, err := (Float{}).Decode([]byte("nope")); err == nil {
		t.Fatalf("expected error decoding non-numeric text")
	}
}

func TestLimitCodec(t *testing.T) {
	c := LimitCodec[string]{Inner: String{}, MaxDecode: 4}
	if v, err := c.Decode([]byte("abcd")); err != nil || v != "abcd" {
		t.Fatalf("Decode at limit: %q %v", v, err)
	}
	if _, err := c.Decode([]byte("abcde")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	unlimited := LimitCodec[string]{Inner: String{}}
	if _, err := unlimited.Decode(make([]byte, 1<<16)); err != nil {
		t.Fatalf("MaxDecode=0 must not limit: %v", err)
	}
}

func TestStructCodecs(t *testing.T) {
	in := page{URL: "http://example.com", Hits: 3, Fetch: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	codecs := map[string]Codec[page]{
		"json":     JSON[page]{},
		"msgpack":  Msgpack[page]{},
		"cbor":     MustCBOR[page](false),
		"cbor-det": MustCBOR[page](true),
	}
	for name, c := range codecs {
		b, err := c.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if out.URL != in.URL || out.Hits != in.Hits || !out.Fetch.Equal(in.Fetch) {
			t.Fatalf("%s mismatch: got %+v want %+v", name, out, in)
		}
	}
}

func TestCBORDeterministic(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	a, _ := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	b, _ := c.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
	if string(a) != string(b) {
		t.Fatalf("deterministic CBOR produced different bytes")
	}
}

func TestProtobufCodec(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := c.Encode(wrapperspb.String("hello"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.GetValue() != "hello" {
		t.Fatalf("got %q", m.GetValue())
	}
	if _, err := c.Decode([]byte{0xff, 0xff}); err == nil {
		t.Fatalf("expected error decoding garbage")
	}
}

func TestMsgpackJSONTags(t *testing.T) {
	type tagged struct {
		Name string `json:"n"`
	}
	c := Msgpack[tagged]{JSONTags: true}
	b, err := c.Encode(tagged{Name: "x"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := Msgpack[map[string]string]{}.Decode(b)
	if err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if raw["n"] != "x" {
		t.Fatalf("expected json tag name on the wire, got %v", raw)
	}
}
