// Package spk parses the NAIF DAF/SPK binary kernel format (file header,
// summary records, element arrays; name records are not read) and evaluates its Type 2
// and Type 3 Chebyshev segments. It also discovers, at Open time, the
// segment chain from every body in the kernel up to the Solar System
// Barycenter.
package spk

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/vedastro/ephem/errs"
)

const recordLen = 1024

// segment is one parsed SPK data segment: a uniform grid of fixed-length
// Chebyshev records covering [startSec, endSec] (TDB seconds past J2000).
type segment struct {
	target, center, frame, dataType int
	startSec, endSec                float64
	init, intLen                    float64
	rsize, n, nCoeffs               int
	data                            []float64
}

// SegmentMeta is the exported, read-only view of a segment's header,
// returned by Kernel.Segments.
type SegmentMeta struct {
	Target, Center, Frame, DataType int
	StartSec, EndSec                float64
}

// ChainLink is one hop in a body's path to the Solar System Barycenter:
// the position contribution of Target relative to Center.
type ChainLink struct {
	Target, Center int
}

// Kernel owns a fully parsed DAF/SPK file: its segment index and the
// resolved chain from every reachable body to SSB. Kernel is safe for
// concurrent read-only use once Open returns.
type Kernel struct {
	path     string
	segments []segment
	segMap   map[[2]int][]*segment // [target, center] -> segments, sorted by startSec
	chains   map[int][]ChainLink   // body -> chain of links to SSB
}

// Open reads and parses an SPK file, honoring its recorded byte order, and
// pre-computes the chain from every body in the file to SSB. Only Type 2
// and Type 3 segments are supported; any other segment type is a
// KernelInvalid error.
func Open(path string) (*Kernel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfigError, "opening kernel %q", path)
	}
	defer f.Close()

	fileRec := make([]byte, recordLen)
	if _, err := io.ReadFull(f, fileRec); err != nil {
		return nil, errs.Wrap(errs.ErrKernelTruncated, "kernel %q: file record shorter than %d bytes", path, recordLen)
	}

	locidw := string(fileRec[0:8])
	if !strings.HasPrefix(locidw, "DAF/SPK") {
		return nil, errs.Wrap(errs.ErrKernelInvalid, "kernel %q: not a DAF/SPK file (LOCIDW=%q)", path, locidw)
	}

	bo := byteOrderOf(fileRec)

	nd := int(int32(bo.Uint32(fileRec[8:12])))
	ni := int(int32(bo.Uint32(fileRec[12:16])))
	fward := int(int32(bo.Uint32(fileRec[76:80])))

	summaryDoubles := nd + (ni+1)/2
	summaryBytes := summaryDoubles * 8

	k := &Kernel{
		path:   path,
		segMap: make(map[[2]int][]*segment),
		chains: make(map[int][]ChainLink),
	}

	recNum := fward
	for recNum != 0 {
		offset := int64(recNum-1) * recordLen
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return nil, errs.Wrap(errs.ErrKernelTruncated, "kernel %q: seeking to summary record at offset %d", path, offset)
		}
		rec := make([]byte, recordLen)
		if _, err := io.ReadFull(f, rec); err != nil {
			return nil, errs.Wrap(errs.ErrKernelTruncated, "kernel %q: summary record at offset %d shorter than %d bytes", path, offset, recordLen)
		}

		nextRec := math.Float64frombits(bo.Uint64(rec[0:8]))
		nSummaries := int(math.Float64frombits(bo.Uint64(rec[16:24])))

		pos := 24
		for i := 0; i < nSummaries; i++ {
			if pos+summaryBytes > recordLen {
				return nil, errs.Wrap(errs.ErrKernelTruncated, "kernel %q: summary record overruns 1024-byte block", path)
			}
			summary := rec[pos : pos+summaryBytes]

			startSec := math.Float64frombits(bo.Uint64(summary[0:8]))
			endSec := math.Float64frombits(bo.Uint64(summary[8:16]))

			intOff := nd * 8
			target := int(int32(bo.Uint32(summary[intOff:])))
			center := int(int32(bo.Uint32(summary[intOff+4:])))
			frame := int(int32(bo.Uint32(summary[intOff+8:])))
			dataType := int(int32(bo.Uint32(summary[intOff+12:])))
			startI := int(int32(bo.Uint32(summary[intOff+16:])))
			endI := int(int32(bo.Uint32(summary[intOff+20:])))

			if dataType != 2 && dataType != 3 {
				return nil, errs.Wrap(errs.ErrKernelInvalid, "kernel %q: unsupported SPK type %d (target=%d, center=%d)", path, dataType, target, center)
			}

			nWords := endI - startI + 1
			if nWords < 4 {
				return nil, errs.Wrap(errs.ErrKernelInvalid, "kernel %q: segment target=%d center=%d has no directory", path, target, center)
			}
			dataOffset := int64(startI-1) * 8
			if _, err := f.Seek(dataOffset, io.SeekStart); err != nil {
				return nil, errs.Wrap(errs.ErrKernelTruncated, "kernel %q: seeking to segment data at offset %d", path, dataOffset)
			}
			rawData := make([]byte, nWords*8)
			if _, err := io.ReadFull(f, rawData); err != nil {
				return nil, errs.Wrap(errs.ErrKernelTruncated, "kernel %q: segment target=%d center=%d data shorter than declared", path, target, center)
			}

			data := make([]float64, nWords)
			for j := range data {
				data[j] = math.Float64frombits(bo.Uint64(rawData[j*8 : j*8+8]))
			}

			seg := segment{
				target:   target,
				center:   center,
				frame:    frame,
				dataType: dataType,
				startSec: startSec,
				endSec:   endSec,
				init:     data[nWords-4],
				intLen:   data[nWords-3],
				rsize:    int(data[nWords-2]),
				n:        int(data[nWords-1]),
				data:     data[:nWords-4],
			}
			if seg.intLen <= 0 || seg.n <= 0 || seg.rsize <= 2 {
				return nil, errs.Wrap(errs.ErrKernelInvalid, "kernel %q: segment target=%d center=%d has invalid directory", path, target, center)
			}
			if dataType == 2 {
				seg.nCoeffs = (seg.rsize - 2) / 3
			} else {
				seg.nCoeffs = (seg.rsize - 2) / 6
			}

			k.segments = append(k.segments, seg)
			key := [2]int{target, center}
			k.segMap[key] = append(k.segMap[key], &k.segments[len(k.segments)-1])

			pos += summaryBytes
		}

		if nextRec == 0.0 {
			break
		}
		recNum = int(nextRec)
	}

	if len(k.segments) == 0 {
		return nil, errs.Wrap(errs.ErrKernelInvalid, "kernel %q: no segments found", path)
	}

	for _, segs := range k.segMap {
		sort.Slice(segs, func(i, j int) bool { return segs[i].startSec < segs[j].startSec })
	}

	if err := k.buildChains(); err != nil {
		return nil, err
	}

	return k, nil
}

// byteOrderOf inspects the DAF file record's LOCFMT field (bytes 88-96) and
// returns the binary.ByteOrder the rest of the file is encoded in. Kernels
// with a blank or unrecognized LOCFMT (some very old SPKs omit it) are
// assumed little-endian, the overwhelmingly common case for modern
// distributions of DE-series kernels.
func byteOrderOf(fileRec []byte) binary.ByteOrder {
	locfmt := strings.TrimSpace(string(fileRec[88:96]))
	if strings.EqualFold(locfmt, "BIG-IEEE") {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Segments returns metadata for every segment in the kernel.
func (k *Kernel) Segments() []SegmentMeta {
	out := make([]SegmentMeta, len(k.segments))
	for i, s := range k.segments {
		out[i] = SegmentMeta{
			Target: s.target, Center: s.center, Frame: s.frame, DataType: s.dataType,
			StartSec: s.startSec, EndSec: s.endSec,
		}
	}
	return out
}

// findSegment selects the segment covering seconds per the spec's tie-break
// rule: the segment whose midpoint is closest to the epoch, ties broken by
// the later start_et. An epoch outside every candidate's window is
// EpochOutOfRange, naming the union of available windows.
func findSegment(segs []*segment, target, center int, seconds float64) (*segment, error) {
	var best *segment
	bestDist := math.Inf(1)
	for _, seg := range segs {
		if seconds < seg.startSec || seconds > seg.endSec {
			continue
		}
		mid := (seg.startSec + seg.endSec) / 2.0
		dist := math.Abs(seconds - mid)
		if best == nil || dist < bestDist || (dist == bestDist && seg.startSec > best.startSec) {
			best, bestDist = seg, dist
		}
	}
	if best == nil {
		return nil, errs.Wrap(errs.ErrEpochOutOfRange,
			"target=%d center=%d: epoch %.6f sec past J2000 TDB outside segment window [%.6f, %.6f]",
			target, center, seconds, segs[0].startSec, segs[len(segs)-1].endSec)
	}
	return best, nil
}

// PositionVelocity evaluates the direct target-relative-to-center state at
// tdbSec (TDB seconds past J2000), in km and km/s, ICRF/J2000 frame.
func (k *Kernel) PositionVelocity(target, center int, tdbSec float64) (pos, vel [3]float64, err error) {
	segs := k.segMap[[2]int{target, center}]
	if len(segs) == 0 {
		return pos, vel, errs.Wrap(errs.ErrNoSegment, "no direct segment for target=%d center=%d", target, center)
	}
	seg, err := findSegment(segs, target, center, tdbSec)
	if err != nil {
		return pos, vel, err
	}

	idx := int((tdbSec - seg.init) / seg.intLen)
	if tdbSec == seg.endSec {
		idx = seg.n - 1
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= seg.n {
		idx = seg.n - 1
	}

	radius := seg.intLen / 2.0
	recMid := seg.init + float64(idx)*seg.intLen + radius
	tc := (tdbSec - recMid) / radius

	recStart := idx * seg.rsize
	for comp := 0; comp < 3; comp++ {
		cStart := recStart + 2 + comp*seg.nCoeffs
		coeffs := seg.data[cStart : cStart+seg.nCoeffs]
		pos[comp] = chebyshev(coeffs, tc)
		if seg.dataType == 3 {
			vcStart := recStart + 2 + (3+comp)*seg.nCoeffs
			vel[comp] = chebyshev(seg.data[vcStart:vcStart+seg.nCoeffs], tc)
		} else {
			vel[comp] = chebyshevDerivative(coeffs, tc) / radius
		}
	}
	return pos, vel, nil
}

// chebyshev evaluates a Chebyshev series via the Clenshaw recurrence.
// coeffs holds the coefficients, s is the normalized abscissa in [-1, 1].
func chebyshev(coeffs []float64, s float64) float64 {
	n := len(coeffs)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return coeffs[0]
	}
	s2 := 2.0 * s
	w0 := coeffs[n-1]
	w1 := 0.0
	for i := n - 2; i >= 1; i-- {
		w0, w1 = coeffs[i]+s2*w0-w1, w0
	}
	return coeffs[0] + s*w0 - w1
}

// chebyshevDerivative evaluates d/ds of the Chebyshev series at s in
// [-1, 1], via the standard coefficient-derivative recurrence followed by
// Clenshaw evaluation. The caller scales by 1/radius to convert to a time
// derivative.
func chebyshevDerivative(coeffs []float64, s float64) float64 {
	n := len(coeffs)
	if n < 2 {
		return 0
	}
	m := n - 1
	dc := make([]float64, m)
	for j := m - 1; j >= 1; j-- {
		var djp2 float64
		if j+2 < m {
			djp2 = dc[j+2]
		}
		dc[j] = djp2 + 2.0*float64(j+1)*coeffs[j+1]
	}
	var d2 float64
	if m > 2 {
		d2 = dc[2]
	}
	dc[0] = (d2 + 2.0*coeffs[1]) / 2.0
	return chebyshev(dc, s)
}
