package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/importer"
	"github.com/Faultbox/meshview/internal/engine/model"
)

func cmdInfo(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: meshtool info <model>")
	}

	scene, err := importer.Import(args[0], importer.Triangulate)
	if err != nil {
		return err
	}
	return writeSceneInfo(os.Stdout, args[0], scene)
}

func writeSceneInfo(w io.Writer, path string, scene *importer.Scene) error {
	fmt.Fprintf(w, "File:      %s\n", path)
	fmt.Fprintf(w, "Meshes:    %d\n", len(scene.Meshes))
	fmt.Fprintf(w, "Materials: %d\n", len(scene.Materials))
	fmt.Fprintf(w, "Faces:     %d\n", scene.FaceCount())
	fmt.Fprintf(w, "Embedded:  %d\n", len(scene.Embedded))
	if scene.Flags&importer.SceneIncomplete != 0 {
		fmt.Fprintln(w, "Flags:     incomplete")
	}

	fmt.Fprintln(w, "\nNodes:")
	scene.Walk(func(n *importer.Node, depth int) {
		name := n.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "%s%s", strings.Repeat("  ", depth+1), name)
		if len(n.Meshes) > 0 {
			fmt.Fprintf(w, " meshes=%v", n.Meshes)
		}
		fmt.Fprintln(w)
	})

	fmt.Fprintln(w, "\nMaterials:")
	for i, m := range scene.Materials {
		fmt.Fprintf(w, "  [%d] %s\n", i, m.Name)
		slots := make([]importer.TextureType, 0, len(m.Textures))
		for t := range m.Textures {
			slots = append(slots, t)
		}
		sort.Slice(slots, func(a, b int) bool { return slots[a] < slots[b] })
		for _, t := range slots {
			fmt.Fprintf(w, "      %-10s %s\n", t, strings.Join(m.Textures[t], ", "))
		}
	}

	if len(scene.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, msg := range scene.Warnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
	return nil
}

// statsRow is one line of the stats table.
type statsRow struct {
	Path  string
	Stats model.Stats
	// Err is a failed load; Textures holds lenient texture failures.
	Err      error
	Textures error
}

func cmdStats(args []string) error {
	fset := flag.NewFlagSet("stats", flag.ExitOnError)
	strict := fset.Bool("strict", false, "Fail models with missing textures")
	normals := fset.Bool("normals", true, "Generate normals for meshes without them")
	fset.Parse(args)

	if fset.NArg() == 0 {
		return errors.New("usage: meshtool stats [-strict] <model|dir>...")
	}

	paths, err := collectModels(fset.Args())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no model files found (supported: %s)", strings.Join(importer.Extensions(), " "))
	}

	opts := model.Options{StrictTextures: *strict, GenerateNormals: *normals, FlipTextures: true}

	bar := progressbar.Default(int64(len(paths)), "loading")
	rows := make([]statsRow, 0, len(paths))
	for _, p := range paths {
		bar.Describe(filepath.Base(p))
		rows = append(rows, loadStats(p, opts))
		bar.Add(1)
	}
	bar.Close()

	failed := writeStats(os.Stdout, rows)
	if failed > 0 {
		return fmt.Errorf("%d of %d models failed to load", failed, len(rows))
	}
	return nil
}

// loadStats loads path onto a recording device and releases it again.
func loadStats(path string, opts model.Options) statsRow {
	dev := gpu.NewRecorder()
	m, err := model.Load(dev, path, opts)
	row := statsRow{Path: path, Stats: m.Stats(), Err: err, Textures: m.TextureErrors()}
	m.Release()
	return row
}

func writeStats(w io.Writer, rows []statsRow) (failed int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MESHES\tVERTICES\tINDICES\tTEXTURES\tUPLOADS\t")

	var total model.Stats
	for _, r := range rows {
		s := r.Stats
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t  %s\n",
			s.Meshes, s.Vertices, s.Indices, s.Textures, s.TextureAllocations, r.Path)
		total.Meshes += s.Meshes
		total.Vertices += s.Vertices
		total.Indices += s.Indices
		total.Textures += s.Textures
		total.TextureAllocations += s.TextureAllocations
	}
	if len(rows) > 1 {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t  total (%d files)\n",
			total.Meshes, total.Vertices, total.Indices, total.Textures, total.TextureAllocations, len(rows))
	}
	tw.Flush()

	for _, r := range rows {
		problem := r.Err
		if problem != nil {
			failed++
		} else {
			problem = r.Textures
		}
		if problem != nil {
			fmt.Fprintf(w, "\n%s:\n  %s\n", r.Path, indent(problem))
		}
	}
	return failed
}

func cmdTextures(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: meshtool textures <model>")
	}

	dev := gpu.NewRecorder()
	m, err := model.Load(dev, args[0], model.Options{FlipTextures: true})
	defer m.Release()
	if err != nil {
		return err
	}

	writeTextures(os.Stdout, m)
	if terr := m.TextureErrors(); terr != nil {
		fmt.Printf("\nTexture errors:\n  %s\n", indent(terr))
	}
	return nil
}

func writeTextures(w io.Writer, m *model.Model) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MESH\tSAMPLER\tHANDLE\tPATH")
	for i, ms := range m.Meshes() {
		names := ms.SamplerNames()
		for j, t := range ms.Textures() {
			handle := fmt.Sprint(t.Handle)
			if t.Handle == 0 {
				handle = "missing"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, names[j], handle, t.Path)
		}
		if len(ms.Textures()) == 0 {
			fmt.Fprintf(tw, "%d\t-\t-\t-\n", i)
		}
	}
	tw.Flush()
}

func indent(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "\n  ")
}

func cmdFormats() {
	for _, ext := range importer.Extensions() {
		fmt.Println(ext)
	}
}

// collectModels expands directories into the importable files beneath them.
// Explicit file arguments are kept even when the extension is unknown so the
// load reports why.
func collectModels(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && importer.Supported(p) {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}
