package shader

import "testing"

// instr builds one SPIR-V instruction word followed by its operands.
func instr(opcode uint32, operands ...uint32) []uint32 {
	words := make([]uint32, 0, len(operands)+1)
	wordCount := uint32(len(operands) + 1)
	words = append(words, (wordCount<<16)|opcode)
	words = append(words, operands...)
	return words
}

func header(idBound uint32) []uint32 {
	return []uint32{spirvMagic, 0x00010300, 0, idBound, 0}
}

func TestReflectSPIRVRejectsBadMagic(t *testing.T) {
	_, err := ReflectSPIRV([]uint32{0, 1, 2, 3, 4}, "main", StageFragment)
	if err == nil {
		t.Fatal("expected an error for a non-SPIR-V word stream")
	}
}

func TestReflectSPIRVUniformBuffer(t *testing.T) {
	var words []uint32
	words = append(words, header(6)...)
	words = append(words, instr(opTypeStruct, 3)...)
	words = append(words, instr(opTypePointer, 4, storageClassUniform, 3)...)
	words = append(words, instr(opVariable, 4, 5, storageClassUniform)...)
	words = append(words, instr(opDecorate, 5, decorationDescSet, 0)...)
	words = append(words, instr(opDecorate, 5, decorationBinding, 2)...)

	refl, err := ReflectSPIRV(words, "vs_main", StageVertex)
	if err != nil {
		t.Fatalf("ReflectSPIRV: %v", err)
	}
	if refl.EntryPoint != "vs_main" || refl.Stage != StageVertex {
		t.Fatalf("unexpected entry point/stage: %+v", refl)
	}
	if len(refl.Layouts) != 1 {
		t.Fatalf("expected one set, got %d", len(refl.Layouts))
	}
	set := refl.Layouts[0]
	if set.Set != 0 || len(set.Entries) != 1 {
		t.Fatalf("unexpected set: %+v", set)
	}
	entry := set.Entries[0]
	if entry.Binding != 2 {
		t.Errorf("binding = %d, want 2", entry.Binding)
	}
	if entry.Type != BindGroupLayoutEntryUniformBuffer {
		t.Errorf("type = %v, want uniform buffer", entry.Type)
	}
	if !entry.Writable {
		t.Errorf("expected writable (no NonWritable decoration present)")
	}
}

func TestReflectSPIRVStorageBufferNonWritable(t *testing.T) {
	var words []uint32
	words = append(words, header(6)...)
	words = append(words, instr(opTypeStruct, 3)...)
	words = append(words, instr(opTypePointer, 4, storageClassStorageBuffer, 3)...)
	words = append(words, instr(opVariable, 4, 5, storageClassStorageBuffer)...)
	words = append(words, instr(opDecorate, 5, decorationDescSet, 1)...)
	words = append(words, instr(opDecorate, 5, decorationBinding, 0)...)
	words = append(words, instr(opDecorate, 5, decorationNonWriteb)...)

	refl, err := ReflectSPIRV(words, "cs_main", StageCompute)
	if err != nil {
		t.Fatalf("ReflectSPIRV: %v", err)
	}
	if len(refl.Layouts) != 1 || refl.Layouts[0].Set != 1 {
		t.Fatalf("unexpected layouts: %+v", refl.Layouts)
	}
	entry := refl.Layouts[0].Entries[0]
	if entry.Type != BindGroupLayoutEntryStorageBuffer {
		t.Errorf("type = %v, want storage buffer", entry.Type)
	}
	if entry.Writable {
		t.Errorf("expected non-writable due to NonWritable decoration")
	}
}

func TestReflectSPIRVCombinedTextureSampler(t *testing.T) {
	var words []uint32
	words = append(words, header(6)...)
	words = append(words, instr(opTypeImage, 3, 0 /*sampled type*/, 1 /*dim*/, 0, 0, 0, 1 /*sampled*/)...)
	words = append(words, instr(opTypeSampledImage, 4, 3)...)
	words = append(words, instr(opTypePointer, 5, storageClassUniformConstant, 4)...)
	words = append(words, instr(opVariable, 5, 6, storageClassUniformConstant)...)
	words = append(words, instr(opDecorate, 6, decorationDescSet, 0)...)
	words = append(words, instr(opDecorate, 6, decorationBinding, 1)...)

	refl, err := ReflectSPIRV(words, "fs_main", StageFragment)
	if err != nil {
		t.Fatalf("ReflectSPIRV: %v", err)
	}
	entry := refl.Layouts[0].Entries[0]
	if entry.Type != BindGroupLayoutEntryCombinedTextureSampler {
		t.Errorf("type = %v, want combined texture sampler", entry.Type)
	}
}

func TestReflectSPIRVSortsSetsAndBindings(t *testing.T) {
	var words []uint32
	words = append(words, header(20)...)
	words = append(words, instr(opTypeStruct, 3)...)
	words = append(words, instr(opTypePointer, 4, storageClassUniform, 3)...)
	// set 1, binding 5
	words = append(words, instr(opVariable, 4, 5, storageClassUniform)...)
	words = append(words, instr(opDecorate, 5, decorationDescSet, 1)...)
	words = append(words, instr(opDecorate, 5, decorationBinding, 5)...)
	// set 0, binding 3
	words = append(words, instr(opVariable, 4, 6, storageClassUniform)...)
	words = append(words, instr(opDecorate, 6, decorationDescSet, 0)...)
	words = append(words, instr(opDecorate, 6, decorationBinding, 3)...)
	// set 0, binding 1
	words = append(words, instr(opVariable, 4, 7, storageClassUniform)...)
	words = append(words, instr(opDecorate, 7, decorationDescSet, 0)...)
	words = append(words, instr(opDecorate, 7, decorationBinding, 1)...)

	refl, err := ReflectSPIRV(words, "main", StageFragment)
	if err != nil {
		t.Fatalf("ReflectSPIRV: %v", err)
	}
	if len(refl.Layouts) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(refl.Layouts))
	}
	if refl.Layouts[0].Set != 0 || refl.Layouts[1].Set != 1 {
		t.Fatalf("sets not sorted: %+v", refl.Layouts)
	}
	entries := refl.Layouts[0].Entries
	if len(entries) != 2 || entries[0].Binding != 1 || entries[1].Binding != 3 {
		t.Fatalf("bindings not sorted within set: %+v", entries)
	}
}

func TestReflectSPIRVTruncatedStream(t *testing.T) {
	words := append(header(6), (uint32(5)<<16)|opVariable, 1, 2)
	if _, err := ReflectSPIRV(words, "main", StageVertex); err == nil {
		t.Fatal("expected an error for a truncated instruction")
	}
}

func TestWordsFromBytesRoundTrip(t *testing.T) {
	data := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x03, 0x01, 0x00}
	words, err := wordsFromBytes(data)
	if err != nil {
		t.Fatalf("wordsFromBytes: %v", err)
	}
	if len(words) != 2 || words[0] != spirvMagic {
		t.Fatalf("unexpected words: %#v", words)
	}
}

func TestWordsFromBytesRejectsOddLength(t *testing.T) {
	if _, err := wordsFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a non-multiple-of-4 byte length")
	}
}
