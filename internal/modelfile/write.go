package modelfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	"taupgo/internal/branch"
	"taupgo/internal/cache"
	"taupgo/internal/earth"
	"taupgo/internal/upgoing"
)

// WriteHeaderAndTable writes snap to hedPath/tblPath in the format
// ReadHeaderAndTable expects. Used by tooling that converts a freshly
// generated model into the legacy on-disk shape, and by this package's own
// round-trip tests.
func WriteHeaderAndTable(hedPath, tblPath string, snap *cache.Snapshot) error {
	var hedBody bytes.Buffer
	putF8(&hedBody, snap.Conv.RadiusKm)
	putF8(&hedBody, snap.Conv.RefVelKmS)
	if err := os.WriteFile(hedPath, frame(hedBody.Bytes()), 0o644); err != nil {
		return err
	}

	var tbl bytes.Buffer
	tbl.Write(frame(encodeEarthModel(snap.EarthP)))
	tbl.Write(frame(encodeEarthModel(snap.EarthS)))
	tbl.Write(frame(encodeUpGoing(snap.UpGoingP)))
	tbl.Write(frame(encodeUpGoing(snap.UpGoingS)))
	tbl.Write(frame(encodeBranches(snap.Branches)))
	return os.WriteFile(tblPath, tbl.Bytes(), 0o644)
}

func frame(body []byte) []byte {
	var out bytes.Buffer
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	out.Write(lenBuf[:])
	out.Write(body)
	out.Write(lenBuf[:])
	return out.Bytes()
}

func putF8(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

func putI4(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func putStr(buf *bytes.Buffer, s string) {
	putI4(buf, int32(len(s)))
	buf.WriteString(s)
}

func encodeEarthModel(m *earth.Model) []byte {
	var buf bytes.Buffer
	putI4(&buf, int32(len(m.Samples)))
	for _, s := range m.Samples {
		putF8(&buf, s.FlatDepth)
		putF8(&buf, s.Slowness)
		putI4(&buf, int32(s.UpIndex))
	}
	return buf.Bytes()
}

func encodeUpGoing(t *upgoing.Table) []byte {
	var buf bytes.Buffer
	m := len(t.Grid)
	putI4(&buf, int32(m))
	for _, v := range t.Grid {
		putF8(&buf, v)
	}
	for _, v := range t.XEnd {
		putF8(&buf, v)
	}
	putI4(&buf, int32(len(t.Depth)))
	for _, v := range t.Depth {
		putF8(&buf, v)
	}
	for k := range t.Depth {
		putI4(&buf, int32(len(t.Tau[k])))
		for _, v := range t.Tau[k] {
			putF8(&buf, v)
		}
		for _, v := range t.X[k] {
			putF8(&buf, v)
		}
	}
	return buf.Bytes()
}

func encodeBranches(branches []*branch.SurfaceFocus) []byte {
	var buf bytes.Buffer
	putI4(&buf, int32(len(branches)))
	for _, sf := range branches {
		putStr(&buf, sf.PhaseCode)
		putStr(&buf, sf.SegmentCode)
		putI4(&buf, int32(sf.Legs.PreSurface))
		putI4(&buf, int32(sf.Legs.DownGoing))
		putI4(&buf, int32(sf.Legs.UpGoing))
		putF8(&buf, sf.Sign)
		putI4(&buf, int32(sf.MantleCount))
		putI4(&buf, int32(len(sf.P)))
		for _, v := range sf.P {
			putF8(&buf, v)
		}
		for _, v := range sf.Tau {
			putF8(&buf, v)
		}
		putF8(&buf, sf.XMin)
		putF8(&buf, sf.XMax)

		if sf.HasDiff {
			putI4(&buf, 1)
		} else {
			putI4(&buf, 0)
		}
		putStr(&buf, sf.DiffCode)
		putF8(&buf, sf.XDiff)
		if sf.HasAddOn {
			putI4(&buf, 1)
		} else {
			putI4(&buf, 0)
		}
		putStr(&buf, sf.AddOnCode)
		putStr(&buf, sf.ReflectType)
		putStr(&buf, sf.TurningShell)
		putF8(&buf, sf.ShellRMin)
		putF8(&buf, sf.ShellRMax)
	}
	return buf.Bytes()
}
