package notice

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"noticeboard/pkg/logx"
)

// Prober answers whether a directory accepts new files.
type Prober interface {
	Writable(dir string) bool
}

const probePayload = "ok"

// FsProber writes a probe file, reads it back and removes it.
// Any failure along the way means "not writable"; errors never escape.
type FsProber struct {
	Fs  afero.Fs
	Now func() time.Time
	Log logx.Logger
}

// NewFsProber returns a prober over fs. A nil fs means the OS filesystem.
func NewFsProber(fs afero.Fs, log logx.Logger) *FsProber {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FsProber{Fs: fs, Now: time.Now, Log: log}
}

func (p *FsProber) Writable(dir string) (ok bool) {
	if p == nil || p.Fs == nil || dir == "" {
		return false
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	name := probeName(dir, now())

	defer func() {
		if r := recover(); r != nil {
			p.Log.Debug("probe panicked", logx.String("dir", dir), logx.Any("panic", r))
			ok = false
		}
	}()

	if err := afero.WriteFile(p.Fs, name, []byte(probePayload), 0o644); err != nil {
		p.Log.Debug("probe write failed", logx.String("dir", dir), logx.Err(err))
		// A failed write may still leave a partial file behind.
		_ = p.Fs.Remove(name)
		return false
	}
	removed := false
	defer func() {
		if !removed {
			_ = p.Fs.Remove(name)
		}
	}()

	got, err := afero.ReadFile(p.Fs, name)
	if err != nil || !bytes.Equal(got, []byte(probePayload)) {
		p.Log.Debug("probe read-back failed", logx.String("dir", dir), logx.Err(err))
		return false
	}

	removed = true
	if err := p.Fs.Remove(name); err != nil {
		p.Log.Debug("probe delete failed", logx.String("dir", dir), logx.Err(err))
		return false
	}
	return true
}

// probeName is timestamped for humans and carries a uuid so concurrent
// requests on the same host never share a file.
func probeName(dir string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("configtester_%s_%s.txt", at.Format("2006-01-02-15-04-05"), uuid.NewString()))
}
