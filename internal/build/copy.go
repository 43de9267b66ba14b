package build

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// A parsed copy step. stage is empty for host sources.
type copySpec struct {
	stage string
	src   string
	dest  string
}

// Parses "src dest" or "stage:src dest". A relative dest is resolved
// against workdir, which must then be set.
func parseCopy(s, workdir string) (copySpec, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return copySpec{}, fmt.Errorf("%w: want \"src dest\", got %q", ErrCopy, s)
	}

	spec := copySpec{src: fields[0], dest: fields[1]}
	if stage, path, ok := strings.Cut(spec.src, ":"); ok && stage != "" && !strings.Contains(stage, "/") {
		spec.stage, spec.src = stage, path
	}

	if !filepath.IsAbs(spec.dest) {
		if workdir == "" {
			return copySpec{}, fmt.Errorf("%w: relative destination %q without workdir", ErrCopy, spec.dest)
		}
		spec.dest = filepath.Join(workdir, spec.dest)
	}
	return spec, nil
}

// Executes a copy step into the stage container.
func (e *executor) copy(ctx context.Context, expr, workdir string) error {
	spec, err := parseCopy(expr, workdir)
	if err != nil {
		return err
	}

	if err := e.ctr.MkdirAll(ctx, filepath.Dir(spec.dest)); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	if spec.stage != "" {
		err = e.copyFromStage(ctx, spec)
	} else {
		err = e.copyFromHost(ctx, spec)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCopy, expr, err)
	}
	return nil
}

// Streams a host file or tree, relative to the build context, into the
// container under the destination name.
func (e *executor) copyFromHost(ctx context.Context, spec copySpec) error {
	src := spec.src
	if !filepath.IsAbs(src) {
		src = filepath.Join(e.root, src)
	}
	if _, err := os.Stat(src); err != nil {
		return err
	}

	slog.Debug("copy", "src", src, "dest", spec.dest)

	pr, pw := io.Pipe()
	go func() {
		tw := tar.NewWriter(pw)
		err := WriteTree(tw, src, filepath.Base(spec.dest))
		if closeErr := tw.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	return e.ctr.CopyTo(ctx, pr, filepath.Dir(spec.dest))
}

// Pipes a path out of an earlier named stage of the same platform. The
// copied entry keeps its base name, so dest must end in the same name.
func (e *executor) copyFromStage(ctx context.Context, spec copySpec) error {
	from, ok := e.stages[spec.stage]
	if !ok {
		return fmt.Errorf("unknown stage %q", spec.stage)
	}
	if filepath.Base(spec.src) != filepath.Base(spec.dest) {
		return fmt.Errorf("stage copy cannot rename %s to %s", filepath.Base(spec.src), filepath.Base(spec.dest))
	}

	slog.Debug("stage copy", "stage", spec.stage, "src", spec.src, "dest", spec.dest)

	pr, pw := io.Pipe()
	errc := make(chan error, 1)
	go func() {
		err := from.CopyFrom(ctx, pw, spec.src)
		pw.CloseWithError(err)
		errc <- err
	}()

	if err := e.ctr.CopyTo(ctx, pr, filepath.Dir(spec.dest)); err != nil {
		pr.CloseWithError(err)
		<-errc
		return err
	}
	return <-errc
}

// Writes the file or directory tree at root to tw under name. Version
// control directories are skipped. An empty name writes the contents of a
// directory at the archive root.
func WriteTree(tw *tar.Writer, root, name string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" && path != root {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(name, rel))
		if header.Name == "." {
			return nil
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}
