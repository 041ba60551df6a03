package shell

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"

	"github.com/nonightshift/scosim/internal/archive"
	"github.com/nonightshift/scosim/internal/vfs"
)

func cmdTar(s *Shell, args []string) {
	if len(args) < 2 {
		s.Println("Usage: tar [cvf|xvf] file [directory]")
		return
	}
	options := args[0]
	tarName := args[1]

	switch options {
	case "cvf":
		if len(args) < 3 {
			s.Println("tar: missing directory argument")
			return
		}
		tarCreate(s, tarName, args[2])
	case "xvf":
		tarExtract(s, tarName)
	default:
		s.Println(fmt.Sprintf("tar: invalid option -- '%s'", options))
		s.Println("Usage: tar [cvf|xvf] file [directory]")
	}
}

func tarCreate(s *Shell, tarName, dirPath string) {
	target, err := s.fs.Resolve(dirPath)
	if err != nil {
		s.Println(fmt.Sprintf("tar: %s: No such file or directory", dirPath))
		return
	}
	if !target.IsDir {
		s.Println(fmt.Sprintf("tar: %s: Not a directory", dirPath))
		return
	}
	data, err := archive.Pack(target)
	if err != nil {
		s.Println("tar: " + err.Error())
		return
	}
	if err := s.fs.Write(tarName, string(data), false); err != nil {
		s.Println(fmt.Sprintf("tar: %s: %s", tarName, errText(err)))
		return
	}
	// verbose listing straight from the archive we just wrote
	for _, name := range archiveNames(data) {
		s.sleep(s.tarDelay)
		s.Println("a " + name)
	}
}

func tarExtract(s *Shell, tarName string) {
	node, err := s.fs.Resolve(tarName)
	if err != nil {
		s.Println(fmt.Sprintf("tar: %s: No such file or directory", tarName))
		return
	}
	if node.IsDir {
		s.Println(fmt.Sprintf("tar: %s: Is a directory", tarName))
		return
	}
	if node.Content == "" {
		s.Println(fmt.Sprintf("tar: %s: Empty archive", tarName))
		return
	}
	names, err := archive.Unpack([]byte(node.Content), s.fs.Current)
	for _, name := range names {
		s.sleep(s.tarDelay)
		s.Println("x " + name)
	}
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrFormat), errors.Is(err, archive.ErrEncoding):
			s.Println("tar: " + err.Error())
		case errors.Is(err, vfs.ErrNotADirectory):
			s.Println("tar: extraction target is not a directory")
		default:
			s.Println("tar: error extracting archive: " + err.Error())
		}
	}
}

// archiveNames lists the entry names of a tar stream in order.
func archiveNames(data []byte) []string {
	var names []string
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err != nil {
			return names
		}
		names = append(names, hdr.Name)
	}
}
