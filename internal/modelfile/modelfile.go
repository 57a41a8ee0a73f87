/*------------------------------------------------------------------------------
* modelfile.go : legacy model table reader
*
* Uses the same framed-record idiom as correction/topography.go (leading and
* trailing 4-byte lengths bracketing each record, little-endian throughout),
* generalized from one fixed-shape grid to the records a model table builder
* emits: the conversion constants in the header file, then in the table file
* the P and S earth-model samples, the P and S up-going tables and the branch
* array, in that order. (The serialized cache orders the branch array before
* the up-going tables; the two formats are independent.)
*-----------------------------------------------------------------------------*/
package modelfile

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"taupgo/internal/branch"
	"taupgo/internal/cache"
	"taupgo/internal/earth"
	"taupgo/internal/model"
	"taupgo/internal/taperror"
	"taupgo/internal/upgoing"
)

// ReadHeaderAndTable reads the {model.hed, model.tbl} pair and returns the
// snapshot the session factory needs to build a model.
func ReadHeaderAndTable(hedPath, tblPath string) (*cache.Snapshot, error) {
	hed, err := os.Open(hedPath)
	if err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "opening model header file")
	}
	defer hed.Close()

	conv, err := readHeader(hed)
	if err != nil {
		return nil, err
	}

	tbl, err := os.Open(tblPath)
	if err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "opening model table file")
	}
	defer tbl.Close()

	br := &frameReader{r: tbl}
	earthP, err := readEarthModel(br)
	if err != nil {
		return nil, err
	}
	earthS, err := readEarthModel(br)
	if err != nil {
		return nil, err
	}
	upP, err := readUpGoing(br)
	if err != nil {
		return nil, err
	}
	upS, err := readUpGoing(br)
	if err != nil {
		return nil, err
	}
	branches, err := readBranches(br)
	if err != nil {
		return nil, err
	}

	return &cache.Snapshot{
		Conv:     conv,
		EarthP:   earthP,
		EarthS:   earthS,
		UpGoingP: upP,
		UpGoingS: upS,
		Branches: branches,
	}, nil
}

// readHeader reads C1's normalization constants: a single framed record
// holding radius and reference surface velocity as little-endian float64s.
func readHeader(r io.Reader) (*model.Conversion, error) {
	br := &frameReader{r: r}
	body, err := br.readFrame()
	if err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "reading model header record")
	}
	if len(body) < 16 {
		return nil, taperror.New(taperror.ModelReadFailure, "model header record too short")
	}
	radiusKm := f8(body[0:8])
	refVelKmS := f8(body[8:16])
	return model.New(radiusKm, refVelKmS), nil
}

func readEarthModel(br *frameReader) (*earth.Model, error) {
	body, err := br.readFrame()
	if err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "reading earth model record")
	}
	if len(body) < 4 {
		return nil, taperror.New(taperror.ModelReadFailure, "earth model record too short")
	}
	n := int(int32(binary.LittleEndian.Uint32(body[0:4])))
	off := 4
	const recSize = 8 + 8 + 4
	if len(body) < off+n*recSize {
		return nil, taperror.New(taperror.ModelReadFailure, "earth model record truncated")
	}
	samples := make([]earth.Sample, n)
	for i := 0; i < n; i++ {
		samples[i] = earth.Sample{
			FlatDepth: f8(body[off : off+8]),
			Slowness:  f8(body[off+8 : off+16]),
			UpIndex:   int(int32(binary.LittleEndian.Uint32(body[off+16 : off+20]))),
		}
		off += recSize
	}
	return earth.NewModel(samples), nil
}

func readUpGoing(br *frameReader) (*upgoing.Table, error) {
	body, err := br.readFrame()
	if err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "reading up-going table record")
	}
	p := &bytePos{buf: body}

	m := int(p.i4())
	grid := p.f8s(m)
	xEnd := p.f8s(m)
	nDepth := int(p.i4())

	depth := p.f8s(nDepth)
	tau := make([][]float64, nDepth)
	x := make([][]float64, nDepth)
	for k := 0; k < nDepth; k++ {
		nk := int(p.i4())
		tau[k] = p.f8s(nk)
		x[k] = p.f8s(nk)
	}
	if p.err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, p.err, "up-going table record truncated")
	}
	return &upgoing.Table{Grid: grid, XEnd: xEnd, Depth: depth, Tau: tau, X: x}, nil
}

func readBranches(br *frameReader) ([]*branch.SurfaceFocus, error) {
	body, err := br.readFrame()
	if err != nil {
		return nil, taperror.Wrap(taperror.ModelReadFailure, err, "reading branch array record")
	}
	p := &bytePos{buf: body}

	nBranches := int(p.i4())
	out := make([]*branch.SurfaceFocus, 0, nBranches)
	for b := 0; b < nBranches; b++ {
		in := branch.BuildInput{
			PhaseCode:   p.str(),
			SegmentCode: p.str(),
			Legs: branch.Legs{
				PreSurface: branch.WaveType(p.i4()),
				DownGoing:  branch.WaveType(p.i4()),
				UpGoing:    branch.WaveType(p.i4()),
			},
			Sign:        p.f8(),
			MantleCount: int(p.i4()),
		}
		n := int(p.i4())
		in.P = p.f8s(n)
		in.Tau = p.f8s(n)
		in.XMin = p.f8()
		in.XMax = p.f8()

		in.HasDiff = p.i4() != 0
		in.DiffCode = p.str()
		in.XDiff = p.f8()
		in.HasAddOn = p.i4() != 0
		in.AddOnCode = p.str()
		in.ReflectType = p.str()
		in.TurningShell = p.str()
		in.ShellRMin = p.f8()
		in.ShellRMax = p.f8()

		if p.err != nil {
			return nil, taperror.Wrap(taperror.ModelReadFailure, p.err, "branch record truncated")
		}
		sf, err := branch.New(in)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, nil
}

func f8(b []byte) float64 {
	bits := binary.LittleEndian.Uint64(b)
	return math.Float64frombits(bits)
}

// frameReader reads length-prefixed, length-suffixed records: the same
// bracketing convention correction.ReadTopography uses for its rows.
type frameReader struct {
	r io.Reader
}

func (f *frameReader) readFrame() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(f.r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(f.r, body); err != nil {
		return nil, err
	}
	var trailBuf [4]byte
	if _, err := io.ReadFull(f.r, trailBuf[:]); err != nil {
		return nil, err
	}
	if binary.LittleEndian.Uint32(trailBuf[:]) != n {
		return nil, taperror.New(taperror.ModelReadFailure, "record frame length mismatch")
	}
	return body, nil
}

// bytePos is a cursor over an in-memory record body, used to decode mixed
// int/float/string sequences without re-framing each field individually.
type bytePos struct {
	buf []byte
	off int
	err error
}

func (p *bytePos) need(n int) bool {
	if p.err != nil || p.off+n > len(p.buf) {
		if p.err == nil {
			p.err = io.ErrUnexpectedEOF
		}
		return false
	}
	return true
}

func (p *bytePos) i4() int32 {
	if !p.need(4) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(p.buf[p.off : p.off+4]))
	p.off += 4
	return v
}

func (p *bytePos) f8() float64 {
	if !p.need(8) {
		return 0
	}
	v := f8(p.buf[p.off : p.off+8])
	p.off += 8
	return v
}

func (p *bytePos) f8s(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p.f8()
	}
	return out
}

func (p *bytePos) str() string {
	n := int(p.i4())
	if n < 0 || !p.need(n) {
		return ""
	}
	s := string(p.buf[p.off : p.off+n])
	p.off += n
	return s
}
