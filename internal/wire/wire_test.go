package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func mustDecodeString(t *testing.T, b []byte) (int64, []byte) {
	t.Helper()
	dl, p, err := DecodeString(b)
	if err != nil {
		t.Fatalf("DecodeString error: %v", err)
	}
	return dl, p
}

func mustDecodeList(t *testing.T, b []byte) (int64, [][]byte) {
	t.Helper()
	dl, it, err := DecodeList(b)
	if err != nil {
		t.Fatalf("DecodeList error: %v", err)
	}
	return dl, it
}

func TestStringRTEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		deadline int64
		payload  []byte
	}{
		{0, nil},
		{42, []byte("hello")},
		{math.MaxInt64, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := EncodeString(tc.deadline, tc.payload)
		dl, p := mustDecodeString(t, enc)
		if dl != tc.deadline {
			t.Fatalf("deadline mismatch: got %d want %d", dl, tc.deadline)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestStringRejectsTrailingBytes(t *testing.T) {
	enc := EncodeString(7, []byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, _, err := DecodeString(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestStringCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeString(1, []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := DecodeString(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := DecodeString(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// a list header is not a string
	badKind := append([]byte(nil), enc...)
	badKind[5] = KindList
	if _, _, err := DecodeString(badKind); err == nil {
		t.Fatalf("expected error on wrong kind")
	}

	// vlen is at offset 14..17 (4 magic +1 ver +1 kind +8 deadline)
	tooLong := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(tooLong[14:18], uint32(len("abc")+1))
	if _, _, err := DecodeString(tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	trunc := enc[:len(enc)-1]
	if _, _, err := DecodeString(trunc); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
}

func TestPeekReportsKindAndDeadline(t *testing.T) {
	kind, dl, err := Peek(EncodeList(99, [][]byte{[]byte("a")}))
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if kind != KindList || dl != 99 {
		t.Fatalf("Peek got kind=%d deadline=%d", kind, dl)
	}

	if _, _, err := Peek([]byte("plain")); err == nil {
		t.Fatalf("expected error on foreign bytes")
	}

	unknown := EncodeString(0, nil)
	unknown[5] = 9
	if _, _, err := Peek(unknown); err == nil {
		t.Fatalf("expected error on unknown kind")
	}
}

func TestListRoundTrip(t *testing.T) {
	cases := [][][]byte{
		nil,
		{[]byte("x")},
		{[]byte("x"), nil, {9, 8, 7}},
		{[]byte("dup"), []byte("dup")},
	}
	for _, items := range cases {
		enc := EncodeList(5, items)
		dl, got := mustDecodeList(t, enc)
		if dl != 5 {
			t.Fatalf("deadline mismatch: %d", dl)
		}
		if len(got) != len(items) {
			t.Fatalf("len mismatch: got %d want %d", len(got), len(items))
		}
		for i := range items {
			if !bytes.Equal(got[i], items[i]) {
				t.Fatalf("item %d mismatch: got=%q want=%q", i, got[i], items[i])
			}
		}
	}
}

func TestListRejectsTrailingBytes(t *testing.T) {
	enc := EncodeList(0, [][]byte{[]byte("v")})
	enc = append(enc, 0xBE, 0xEF)
	if _, _, err := DecodeList(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestListBogusCountAndTruncation(t *testing.T) {
	var buf bytes.Buffer
	header(&buf, KindList, 0)
	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], ^uint32(0))
	buf.Write(u4[:])
	if _, _, err := DecodeList(buf.Bytes()); err == nil {
		t.Fatalf("expected error on bogus n with insufficient bytes")
	}

	buf.Reset()
	header(&buf, KindList, 0)
	binary.BigEndian.PutUint32(u4[:], 1)
	buf.Write(u4[:])
	if _, _, err := DecodeList(buf.Bytes()); err == nil {
		t.Fatalf("expected error on truncated item list")
	}

	enc := EncodeList(0, [][]byte{[]byte("xyz")})
	// first item vlen follows header(14) + n(4)
	binary.BigEndian.PutUint32(enc[18:22], 4)
	if _, _, err := DecodeList(enc); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}
}

func TestListZeroCopyItems(t *testing.T) {
	enc := EncodeList(0, [][]byte{[]byte("X"), []byte("Y")})
	_, got := mustDecodeList(t, enc)
	got[0][0] = 'Q'

	_, got2 := mustDecodeList(t, enc)
	if got2[0][0] != 'Q' {
		t.Fatalf("expected zero-copy item subslices into enc buffer")
	}
}
