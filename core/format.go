package core

import (
	types "github.com/gogpu/gputypes"
)

// FormatInfo describes the storage layout of a texture format: how many
// bytes one block occupies and how many texels a block covers. Uncompressed
// formats have a 1x1 block; compressed formats cover a larger footprint.
type FormatInfo struct {
	BlockWidth  uint32
	BlockHeight uint32
	BlockBytes  uint32
	HasDepth    bool
	HasStencil  bool
}

// formatTable is the subset of WebGPU's format table nexus needs for
// row-alignment and blit math. Formats not listed are rejected by
// LookupFormat with UnsupportedFormatUnknown.
var formatTable = map[types.TextureFormat]FormatInfo{
	types.TextureFormatR8Unorm:  {1, 1, 1, false, false},
	types.TextureFormatR8Snorm:  {1, 1, 1, false, false},
	types.TextureFormatR8Uint:   {1, 1, 1, false, false},
	types.TextureFormatR8Sint:   {1, 1, 1, false, false},
	types.TextureFormatR16Uint:  {1, 1, 2, false, false},
	types.TextureFormatR16Sint:  {1, 1, 2, false, false},
	types.TextureFormatR16Float: {1, 1, 2, false, false},
	types.TextureFormatRG8Unorm: {1, 1, 2, false, false},
	types.TextureFormatRG8Snorm: {1, 1, 2, false, false},
	types.TextureFormatRG8Uint:  {1, 1, 2, false, false},
	types.TextureFormatRG8Sint:  {1, 1, 2, false, false},

	types.TextureFormatR32Uint:         {1, 1, 4, false, false},
	types.TextureFormatR32Sint:         {1, 1, 4, false, false},
	types.TextureFormatR32Float:        {1, 1, 4, false, false},
	types.TextureFormatRG16Uint:        {1, 1, 4, false, false},
	types.TextureFormatRG16Sint:        {1, 1, 4, false, false},
	types.TextureFormatRG16Float:       {1, 1, 4, false, false},
	types.TextureFormatRGBA8Unorm:      {1, 1, 4, false, false},
	types.TextureFormatRGBA8UnormSrgb:  {1, 1, 4, false, false},
	types.TextureFormatRGBA8Snorm:      {1, 1, 4, false, false},
	types.TextureFormatRGBA8Uint:       {1, 1, 4, false, false},
	types.TextureFormatRGBA8Sint:       {1, 1, 4, false, false},
	types.TextureFormatBGRA8Unorm:      {1, 1, 4, false, false},
	types.TextureFormatBGRA8UnormSrgb:  {1, 1, 4, false, false},
	types.TextureFormatRGB10A2Uint:     {1, 1, 4, false, false},
	types.TextureFormatRGB10A2Unorm:    {1, 1, 4, false, false},
	types.TextureFormatRG11B10Ufloat:   {1, 1, 4, false, false},
	types.TextureFormatRGB9E5Ufloat:    {1, 1, 4, false, false},

	types.TextureFormatRG32Uint:    {1, 1, 8, false, false},
	types.TextureFormatRG32Sint:    {1, 1, 8, false, false},
	types.TextureFormatRG32Float:   {1, 1, 8, false, false},
	types.TextureFormatRGBA16Uint:  {1, 1, 8, false, false},
	types.TextureFormatRGBA16Sint:  {1, 1, 8, false, false},
	types.TextureFormatRGBA16Float: {1, 1, 8, false, false},

	types.TextureFormatRGBA32Uint:  {1, 1, 16, false, false},
	types.TextureFormatRGBA32Sint:  {1, 1, 16, false, false},
	types.TextureFormatRGBA32Float: {1, 1, 16, false, false},

	types.TextureFormatStencil8:             {1, 1, 1, false, true},
	types.TextureFormatDepth16Unorm:          {1, 1, 2, true, false},
	types.TextureFormatDepth24Plus:           {1, 1, 4, true, false},
	types.TextureFormatDepth24PlusStencil8:   {1, 1, 4, true, true},
	types.TextureFormatDepth32Float:          {1, 1, 4, true, false},
	types.TextureFormatDepth32FloatStencil8:  {1, 1, 8, true, true},

	types.TextureFormatBC1RGBAUnorm:     {4, 4, 8, false, false},
	types.TextureFormatBC1RGBAUnormSrgb: {4, 4, 8, false, false},
	types.TextureFormatBC2RGBAUnorm:     {4, 4, 16, false, false},
	types.TextureFormatBC2RGBAUnormSrgb: {4, 4, 16, false, false},
	types.TextureFormatBC3RGBAUnorm:     {4, 4, 16, false, false},
	types.TextureFormatBC3RGBAUnormSrgb: {4, 4, 16, false, false},
	types.TextureFormatBC4RUnorm:        {4, 4, 8, false, false},
	types.TextureFormatBC4RSnorm:        {4, 4, 8, false, false},
	types.TextureFormatBC5RGUnorm:       {4, 4, 16, false, false},
	types.TextureFormatBC5RGSnorm:       {4, 4, 16, false, false},
	types.TextureFormatBC6HRGBUfloat:    {4, 4, 16, false, false},
	types.TextureFormatBC6HRGBFloat:     {4, 4, 16, false, false},
	types.TextureFormatBC7RGBAUnorm:     {4, 4, 16, false, false},
	types.TextureFormatBC7RGBAUnormSrgb: {4, 4, 16, false, false},

	types.TextureFormatETC2RGB8Unorm:      {4, 4, 8, false, false},
	types.TextureFormatETC2RGB8UnormSrgb:  {4, 4, 8, false, false},
	types.TextureFormatETC2RGB8A1Unorm:    {4, 4, 8, false, false},
	types.TextureFormatETC2RGB8A1UnormSrgb: {4, 4, 8, false, false},
	types.TextureFormatETC2RGBA8Unorm:     {4, 4, 16, false, false},
	types.TextureFormatETC2RGBA8UnormSrgb: {4, 4, 16, false, false},
	types.TextureFormatEACR11Unorm:        {4, 4, 8, false, false},
	types.TextureFormatEACR11Snorm:        {4, 4, 8, false, false},
	types.TextureFormatEACRG11Unorm:       {4, 4, 16, false, false},
	types.TextureFormatEACRG11Snorm:       {4, 4, 16, false, false},

	types.TextureFormatASTC4x4Unorm:     {4, 4, 16, false, false},
	types.TextureFormatASTC4x4UnormSrgb: {4, 4, 16, false, false},
	types.TextureFormatASTC5x4Unorm:     {5, 4, 16, false, false},
	types.TextureFormatASTC5x4UnormSrgb: {5, 4, 16, false, false},
	types.TextureFormatASTC5x5Unorm:     {5, 5, 16, false, false},
	types.TextureFormatASTC5x5UnormSrgb: {5, 5, 16, false, false},
	types.TextureFormatASTC6x5Unorm:     {6, 5, 16, false, false},
	types.TextureFormatASTC6x5UnormSrgb: {6, 5, 16, false, false},
	types.TextureFormatASTC6x6Unorm:     {6, 6, 16, false, false},
	types.TextureFormatASTC6x6UnormSrgb: {6, 6, 16, false, false},
	types.TextureFormatASTC8x5Unorm:     {8, 5, 16, false, false},
	types.TextureFormatASTC8x5UnormSrgb: {8, 5, 16, false, false},
	types.TextureFormatASTC8x6Unorm:     {8, 6, 16, false, false},
	types.TextureFormatASTC8x6UnormSrgb: {8, 6, 16, false, false},
	types.TextureFormatASTC8x8Unorm:     {8, 8, 16, false, false},
	types.TextureFormatASTC8x8UnormSrgb: {8, 8, 16, false, false},
	types.TextureFormatASTC10x5Unorm:     {10, 5, 16, false, false},
	types.TextureFormatASTC10x5UnormSrgb: {10, 5, 16, false, false},
	types.TextureFormatASTC10x6Unorm:     {10, 6, 16, false, false},
	types.TextureFormatASTC10x6UnormSrgb: {10, 6, 16, false, false},
	types.TextureFormatASTC10x8Unorm:     {10, 8, 16, false, false},
	types.TextureFormatASTC10x8UnormSrgb: {10, 8, 16, false, false},
	types.TextureFormatASTC10x10Unorm:     {10, 10, 16, false, false},
	types.TextureFormatASTC10x10UnormSrgb: {10, 10, 16, false, false},
	types.TextureFormatASTC12x10Unorm:     {12, 10, 16, false, false},
	types.TextureFormatASTC12x10UnormSrgb: {12, 10, 16, false, false},
	types.TextureFormatASTC12x12Unorm:     {12, 12, 16, false, false},
	types.TextureFormatASTC12x12UnormSrgb: {12, 12, 16, false, false},
}

// Formats that are part of the API surface but never creatable: 3-channel
// 8/16/32-bit layouts have no portable backend representation, and the
// packed 10-10-10-2 values below are the non-standard component orders.
// They live above gputypes' enum range so they can never collide with a
// supported format, and texture creation rejects them with
// UnsupportedFormatRejected rather than treating them as unknown values.
const (
	TextureFormatRGB8Unorm types.TextureFormat = 0x8000 + iota
	TextureFormatRGB8Snorm
	TextureFormatRGB8Uint
	TextureFormatRGB8Sint
	TextureFormatRGB16Uint
	TextureFormatRGB16Sint
	TextureFormatRGB16Float
	TextureFormatRGB32Uint
	TextureFormatRGB32Sint
	TextureFormatRGB32Float
	TextureFormatBGR10A2Unorm
	TextureFormatRGB10A2Snorm
)

var rejectedFormats = map[types.TextureFormat]string{
	TextureFormatRGB8Unorm:    "RGB8Unorm",
	TextureFormatRGB8Snorm:    "RGB8Snorm",
	TextureFormatRGB8Uint:     "RGB8Uint",
	TextureFormatRGB8Sint:     "RGB8Sint",
	TextureFormatRGB16Uint:    "RGB16Uint",
	TextureFormatRGB16Sint:    "RGB16Sint",
	TextureFormatRGB16Float:   "RGB16Float",
	TextureFormatRGB32Uint:    "RGB32Uint",
	TextureFormatRGB32Sint:    "RGB32Sint",
	TextureFormatRGB32Float:   "RGB32Float",
	TextureFormatBGR10A2Unorm: "BGR10A2Unorm",
	TextureFormatRGB10A2Snorm: "RGB10A2Snorm",
}

// RejectedFormat reports whether f is one of the defined-but-rejected
// formats, returning its name for error messages.
func RejectedFormat(f types.TextureFormat) (string, bool) {
	name, ok := rejectedFormats[f]
	return name, ok
}

// LookupFormat returns the storage layout of a texture format. The second
// return value is false for formats nexus does not recognize at all.
func LookupFormat(f types.TextureFormat) (FormatInfo, bool) {
	info, ok := formatTable[f]
	return info, ok
}

// IsCompressed reports whether a format uses block compression (its blocks
// cover more than a single texel).
func (fi FormatInfo) IsCompressed() bool {
	return fi.BlockWidth > 1 || fi.BlockHeight > 1
}

// BytesPerRow computes the minimum (unaligned) bytes per row for width
// texels of this format.
func (fi FormatInfo) BytesPerRow(width uint32) uint64 {
	blocksWide := (uint64(width) + uint64(fi.BlockWidth) - 1) / uint64(fi.BlockWidth)
	return blocksWide * uint64(fi.BlockBytes)
}

// AlignUp256 rounds n up to the next multiple of 256, the row-pitch
// alignment WebGPU backends require for buffer<->texture copies.
func AlignUp256(n uint64) uint64 {
	const align = 256
	return (n + align - 1) / align * align
}
