// Package local implements storage.Storage and storage.Command against
// a local directory on disk. It is the "concrete local-filesystem
// read/write/create/delete operations" spec.md §1 calls a capability a
// storage server exposes without specifying: this is one reasonable,
// minimal implementation of that capability, grounded in the simple
// monitor-guarded in-memory stores the teacher uses for its own
// in-process servers (dir/inprocess, store/inprocess).
package local

import (
	"io"
	"os"
	"sync"

	"github.com/ewanas/DFS/errors"
	"github.com/ewanas/DFS/path"
)

// Server implements storage.Storage and storage.Command by reading and
// writing files under Root. A single mutex serializes operations on the
// same path's directory structure; SPEC_FULL.md §5 only promises
// per-path atomicity, which os-level file operations already give us.
type Server struct {
	Root string

	mu sync.Mutex
}

// New returns a Server rooted at root. The directory must already
// exist.
func New(root string) *Server {
	return &Server{Root: root}
}

func (s *Server) Read(p path.Path, offset, length int64) ([]byte, error) {
	const op = "local.Server.Read"
	f, err := os.Open(p.ToLocalFile(s.Root))
	if os.IsNotExist(err) {
		return nil, errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return nil, errors.E(op, errors.Other, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, errors.E(op, errors.Other, err)
	}
	buf := make([]byte, length)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, errors.E(op, errors.Other, err)
	}
	return buf[:n], nil
}

func (s *Server) Write(p path.Path, offset int64, data []byte) error {
	const op = "local.Server.Write"
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(p.ToLocalFile(s.Root), os.O_WRONLY, 0o644)
	if os.IsNotExist(err) {
		return errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return errors.E(op, errors.Other, err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, offset); err != nil {
		return errors.E(op, errors.Other, err)
	}
	return nil
}

func (s *Server) Size(p path.Path) (int64, error) {
	const op = "local.Server.Size"
	info, err := os.Stat(p.ToLocalFile(s.Root))
	if os.IsNotExist(err) {
		return 0, errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return 0, errors.E(op, errors.Other, err)
	}
	return info.Size(), nil
}

func (s *Server) Create(p path.Path) error {
	const op = "local.Server.Create"
	s.mu.Lock()
	defer s.mu.Unlock()

	local := p.ToLocalFile(s.Root)
	if parent, err := p.Parent(); err == nil {
		if err := os.MkdirAll(parent.ToLocalFile(s.Root), 0o755); err != nil {
			return errors.E(op, errors.Other, err)
		}
	}
	f, err := os.OpenFile(local, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if os.IsExist(err) {
		return errors.E(op, errors.InvalidArgument, err)
	}
	if err != nil {
		return errors.E(op, errors.Other, err)
	}
	return f.Close()
}

func (s *Server) Delete(p path.Path) error {
	const op = "local.Server.Delete"
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(p.ToLocalFile(s.Root))
	if os.IsNotExist(err) {
		return errors.E(op, errors.NotFound, err)
	}
	if err != nil {
		return errors.E(op, errors.Other, err)
	}
	return nil
}
