package nexus

import (
	"fmt"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/core"
	"github.com/gogpu/nexus/hal"
)

// BufferTextureCopyExtent describes the texel region a buffer<->texture
// copy covers, and where in the buffer its data starts.
type BufferTextureCopyExtent struct {
	BufferOffset uint64
	Origin       Origin3D
	MipLevel     uint32
	Size         Extent3D
}

// CopyBufferToTexture copies texel data from a tightly-packed buffer region
// into a texture. The source buffer holds rows with no padding
// (BytesPerRow = format.BytesPerRow(width) exactly); this method inserts
// whatever row padding the backend requires, picking one of three paths by
// how the unaligned row pitch relates to the 256-byte alignment every
// backend requires of a buffer<->texture copy's row pitch:
//
//  1. Aligned fast path: the unaligned pitch is already a multiple of 256
//     (the common case for wide RGBA8 textures) — one native copy region
//     covers the whole image.
//  2. Compute-repack path: the unaligned pitch is a multiple of 4 bytes but
//     not 256 — src is repacked into a temporary 256-byte-aligned buffer via
//     a compute shader (see rowrepack.go), then copied from there in one
//     region. src must have been created with BufferUsageStorage for this
//     path; it is read as a storage buffer.
//  3. Row-by-row fallback: the unaligned pitch isn't 4-byte aligned either
//     (R8, RG8, R16 at odd widths) — one copy region per texel-block row,
//     which is correct for any pitch at the cost of a region per row.
func (e *CommandEncoder) CopyBufferToTexture(src *Buffer, dst *Texture, extent BufferTextureCopyExtent) error {
	if e.released {
		return ErrReleased
	}
	raw := e.core.RawEncoder()
	if raw == nil {
		return ErrReleased
	}
	halSrc := src.halBuffer()
	halDst := dst.halTexture()
	if halSrc == nil || halDst == nil {
		return fmt.Errorf("nexus: buffer or texture has no HAL resource")
	}

	info, ok := core.LookupFormat(dst.Format())
	if !ok {
		return fmt.Errorf("nexus: unsupported texture format for copy")
	}
	unalignedPitch := info.BytesPerRow(extent.Size.Width)

	if unalignedPitch%256 == 0 {
		raw.CopyBufferToTexture(halSrc, halDst, []hal.BufferTextureCopy{
			bufferTextureCopyRegion(halDst, extent, extent.BufferOffset, uint32(unalignedPitch)),
		})
		return nil
	}

	if unalignedPitch%4 == 0 {
		return e.copyBufferToTextureViaRepack(src, halDst, dst, extent, info, unalignedPitch)
	}

	rows := rowCount(extent.Size, info)
	regions := make([]hal.BufferTextureCopy, 0, rows)
	rowExtent := extent
	rowExtent.Size.Height = info.BlockHeight
	for row := uint32(0); row < rows; row++ {
		rowExtent.Origin.Y = extent.Origin.Y + row*info.BlockHeight
		offset := extent.BufferOffset + uint64(row)*unalignedPitch
		regions = append(regions, bufferTextureCopyRegion(halDst, rowExtent, offset, 0))
	}
	raw.CopyBufferToTexture(halSrc, halDst, regions)
	return nil
}

// copyBufferToTextureViaRepack implements the compute-repack path: allocate
// a temporary aligned buffer, dispatch the row-repack compute shader to
// copy rows into it, then issue the aligned copy from the temp buffer.
func (e *CommandEncoder) copyBufferToTextureViaRepack(src *Buffer, halDst hal.Texture, dst *Texture, extent BufferTextureCopyExtent, info core.FormatInfo, unalignedPitch uint64) error {
	rows := rowCount(extent.Size, info)
	alignedPitch := core.AlignUp256(unalignedPitch)

	temp, err := e.device.CreateBuffer(&BufferDescriptor{
		Label: "row-repack-temp",
		Size:  alignedPitch * uint64(rows),
		Usage: BufferUsageStorage | BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("nexus: row-repack temp buffer: %w", err)
	}

	srcWordsPerRow := uint32(unalignedPitch / 4)
	dstWordsPerRow := uint32(alignedPitch / 4)
	if err := e.repackRowsIntoAligned(src, extent.BufferOffset, temp, srcWordsPerRow, dstWordsPerRow, rows); err != nil {
		return fmt.Errorf("nexus: row-repack dispatch: %w", err)
	}

	halTemp := temp.halBuffer()
	raw := e.core.RawEncoder()
	raw.CopyBufferToTexture(halTemp, halDst, []hal.BufferTextureCopy{
		bufferTextureCopyRegion(halDst, extent, 0, uint32(alignedPitch)),
	})
	return nil
}

// CopyTextureToBuffer copies a texture region into a buffer, using a
// 256-byte-aligned row pitch (the form every backend accepts directly).
// dstRowPitch, if non-zero, overrides the computed aligned pitch; callers
// that pre-sized their buffer to a specific stride pass it here.
func (e *CommandEncoder) CopyTextureToBuffer(src *Texture, dst *Buffer, extent BufferTextureCopyExtent, dstRowPitch uint32) error {
	if e.released {
		return ErrReleased
	}
	raw := e.core.RawEncoder()
	if raw == nil {
		return ErrReleased
	}
	halSrc := src.halTexture()
	halDst := dst.halBuffer()
	if halSrc == nil || halDst == nil {
		return fmt.Errorf("nexus: buffer or texture has no HAL resource")
	}

	info, ok := core.LookupFormat(src.Format())
	if !ok {
		return fmt.Errorf("nexus: unsupported texture format for copy")
	}
	pitch := dstRowPitch
	if pitch == 0 {
		pitch = uint32(alignedBytesPerRow(info, extent.Size.Width))
	}

	raw.CopyTextureToBuffer(halSrc, halDst, []hal.BufferTextureCopy{
		bufferTextureCopyRegion(halSrc, extent, extent.BufferOffset, pitch),
	})
	return nil
}

func bufferTextureCopyRegion(tex hal.Texture, extent BufferTextureCopyExtent, bufferOffset uint64, bytesPerRow uint32) hal.BufferTextureCopy {
	return hal.BufferTextureCopy{
		BufferLayout: hal.ImageDataLayout{
			Offset:      bufferOffset,
			BytesPerRow: bytesPerRow,
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: extent.MipLevel,
			Origin:   extent.Origin,
			Aspect:   types.TextureAspectAll,
		},
		Size: extent.Size,
	}
}

func rowCount(size Extent3D, info core.FormatInfo) uint32 {
	blockHeight := info.BlockHeight
	if blockHeight == 0 {
		blockHeight = 1
	}
	return (size.Height + blockHeight - 1) / blockHeight
}

// alignedBytesPerRow rounds a format's tightly-packed row pitch up to the
// 256-byte alignment buffer<->texture copies require.
func alignedBytesPerRow(info core.FormatInfo, width uint32) uint64 {
	return core.AlignUp256(info.BytesPerRow(width))
}
