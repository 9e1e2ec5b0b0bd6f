package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vkngwrapper/core/core1_0"
)

// minimal SPIR-V header: magic, version 1.0, generator, bound, schema
var spirvHeader = []byte{
	0x03, 0x02, 0x23, 0x07,
	0x00, 0x00, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

func TestDecodeSpirv(t *testing.T) {
	code, err := decodeSpirv("header.spv", spirvHeader)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if len(code) != 5 {
		t.Fatalf("expected 5 words, got %d", len(code))
	}
	if code[0] != spirvMagic {
		t.Errorf("expected magic 0x%08x, got 0x%08x", spirvMagic, code[0])
	}
	if code[1] != 0x00010000 {
		t.Errorf("expected version word 0x00010000, got 0x%08x", code[1])
	}
}

func TestDecodeSpirvRejectsBadInput(t *testing.T) {
	cases := map[string][]byte{
		"empty":     {},
		"unaligned": spirvHeader[:6],
		"bad magic": {0x07, 0x23, 0x02, 0x03},
	}

	for name, b := range cases {
		_, err := decodeSpirv(name, b)
		if err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadShaderCode(t *testing.T) {
	dir := t.TempDir()
	fragment := append(append([]byte{}, spirvHeader...), 0xaa, 0xbb, 0xcc, 0xdd)

	if err := os.WriteFile(filepath.Join(dir, "test.vert.spv"), spirvHeader, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "test.frag.spv"), fragment, 0644); err != nil {
		t.Fatal(err)
	}

	files := []ShaderFile{
		{Name: "test.vert", Stage: core1_0.StageVertex},
		{Name: "test.frag", Stage: core1_0.StageFragment},
	}
	code, err := LoadShaderCode(context.Background(), dir, files)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if len(code) != 2 {
		t.Fatalf("expected code for 2 shaders, got %d", len(code))
	}
	if len(code[0]) != 5 || len(code[1]) != 6 {
		t.Errorf("shader code is out of order: %d and %d words", len(code[0]), len(code[1]))
	}
	if code[1][5] != 0xddccbbaa {
		t.Errorf("expected little-endian words, got 0x%08x", code[1][5])
	}

	_, err = LoadShaderCode(context.Background(), dir, []ShaderFile{{Name: "missing.vert", Stage: core1_0.StageVertex}})
	if err == nil {
		t.Error("expected an error for a missing shader")
	}
}
