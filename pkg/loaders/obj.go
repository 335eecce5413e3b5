package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/geometry"
	"github.com/df07/go-phong-raytracer/pkg/log"
	"github.com/df07/go-phong-raytracer/pkg/material"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

var logger = log.New("loaders")

// ErrSyntax is wrapped by every ParseError
var ErrSyntax = errors.New("loaders: syntax error")

// ParseError reports a malformed statement in a model or material file
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s: %d] %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

// Name of the object that collects faces declared before any o or g statement
const defaultObjectName = "default"

// objReader accumulates a Description while scanning a Wavefront OBJ file
type objReader struct {
	desc *scene.Description

	// Directory that mtllib paths are relative to
	baseDir string

	// Material selected by the last usemtl
	curMaterial string
}

// LoadOBJ reads a Wavefront OBJ file together with the material libraries it references
func LoadOBJ(filename string) (*scene.Description, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	return ReadOBJ(file, filename, filepath.Dir(filename))
}

// ReadOBJ parses OBJ statements from r. source names the input in error
// messages and baseDir is used to resolve mtllib paths.
func ReadOBJ(r io.Reader, source, baseDir string) (*scene.Description, error) {
	start := time.Now()
	reader := &objReader{
		desc:    scene.NewDescription(),
		baseDir: baseDir,
	}

	if err := reader.parse(r, source); err != nil {
		return nil, err
	}

	logger.Infof("parsed %s in %v: %d vertices, %d objects, %d faces, %d materials",
		source, time.Since(start), len(reader.desc.Positions), len(reader.desc.Objects),
		reader.desc.FaceCount(), len(reader.desc.Materials))

	return reader.desc, nil
}

func (r *objReader) parse(in io.Reader, source string) error {
	lineNum := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		fail := func(format string, args ...interface{}) error {
			return &ParseError{File: source, Line: lineNum, Msg: fmt.Sprintf(format, args...)}
		}

		switch tokens[0] {
		case "v":
			v, err := parseVec3(tokens)
			if err != nil {
				return fail("%v", err)
			}
			r.desc.Positions = append(r.desc.Positions, v)
		case "vn":
			v, err := parseVec3(tokens)
			if err != nil {
				return fail("%v", err)
			}
			r.desc.Normals = append(r.desc.Normals, v)
		case "vt":
			v, err := parseVec2(tokens)
			if err != nil {
				return fail("%v", err)
			}
			r.desc.TexCoords = append(r.desc.TexCoords, v)
		case "o", "g":
			if len(tokens) < 2 {
				return fail("expected a name after '%s'", tokens[0])
			}
			r.desc.Objects = append(r.desc.Objects, scene.Object{Name: strings.Join(tokens[1:], " ")})
		case "usemtl":
			if len(tokens) != 2 {
				return fail("unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(tokens)-1)
			}
			r.curMaterial = tokens[1]
			if _, ok := r.desc.Materials[r.curMaterial]; !ok {
				logger.Debugf("%s:%d: material %q is not defined yet", source, lineNum, r.curMaterial)
			}
		case "mtllib":
			if len(tokens) < 2 {
				return fail("expected at least one file after 'mtllib'")
			}
			for _, lib := range tokens[1:] {
				if err := r.loadMaterials(lib); err != nil {
					return fail("%v", err)
				}
			}
		case "f":
			face, err := r.parseFace(tokens)
			if err != nil {
				return fail("%v", err)
			}
			if len(r.desc.Objects) == 0 {
				r.desc.Objects = append(r.desc.Objects, scene.Object{Name: defaultObjectName})
			}
			obj := &r.desc.Objects[len(r.desc.Objects)-1]
			obj.Faces = append(obj.Faces, face)
		default:
			// Smoothing groups, lines and other statements do not affect rendering
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", source, err)
	}
	return nil
}

// parseFace parses a face statement whose corners have one of the forms
// v, v/t, v//n or v/t/n. Negative indices count back from the end of the
// lists read so far and are resolved to 1-based indices here. Positive
// indices are kept as written and checked when the scene is built.
func (r *objReader) parseFace(tokens []string) (*geometry.Face, error) {
	if len(tokens) < 4 {
		return nil, fmt.Errorf("face needs at least 3 corners; got %d", len(tokens)-1)
	}

	face := geometry.NewFace(r.curMaterial)
	for arg, corner := range tokens[1:] {
		parts := strings.Split(corner, "/")
		if len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("malformed face corner %d: %q", arg, corner)
		}

		var fv geometry.FaceVertex
		var err error
		if fv.Vertex, err = resolveIndex(parts[0], len(r.desc.Positions)); err != nil {
			return nil, fmt.Errorf("vertex index of corner %d: %w", arg, err)
		}
		if len(parts) > 1 && parts[1] != "" {
			if fv.Texture, err = resolveIndex(parts[1], len(r.desc.TexCoords)); err != nil {
				return nil, fmt.Errorf("texture index of corner %d: %w", arg, err)
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if fv.Normal, err = resolveIndex(parts[2], len(r.desc.Normals)); err != nil {
				return nil, fmt.Errorf("normal index of corner %d: %w", arg, err)
			}
		}
		face.Vertices = append(face.Vertices, fv)
	}

	return face, nil
}

// resolveIndex converts an OBJ index to a positive 1-based index.
// -1 refers to the last of count elements.
func resolveIndex(token string, count int) (int, error) {
	index, err := strconv.Atoi(token)
	if err != nil {
		return 0, err
	}
	switch {
	case index == 0:
		return 0, errors.New("index 0 is not valid")
	case index < 0:
		resolved := count + index + 1
		if resolved < 1 {
			return 0, fmt.Errorf("relative index %d points before the start of the list", index)
		}
		return resolved, nil
	default:
		return index, nil
	}
}

// loadMaterials reads a material library relative to the OBJ directory
func (r *objReader) loadMaterials(lib string) error {
	path := lib
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, lib)
	}

	materials, err := LoadMTL(path)
	if err != nil {
		return err
	}
	for name, mat := range materials {
		r.desc.Materials[name] = mat
	}
	return nil
}

func parseVec3(tokens []string) (core.Vec3, error) {
	if len(tokens) < 4 {
		return core.Vec3{}, fmt.Errorf("'%s' expects 3 values; got %d", tokens[0], len(tokens)-1)
	}
	var values [3]float64
	for i := range values {
		f, err := strconv.ParseFloat(tokens[i+1], 64)
		if err != nil {
			return core.Vec3{}, err
		}
		values[i] = f
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

func parseVec2(tokens []string) (core.Vec2, error) {
	if len(tokens) < 2 {
		return core.Vec2{}, fmt.Errorf("'%s' expects at least 1 value; got 0", tokens[0])
	}
	u, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return core.Vec2{}, err
	}
	v := 0.0
	if len(tokens) > 2 {
		if v, err = strconv.ParseFloat(tokens[2], 64); err != nil {
			return core.Vec2{}, err
		}
	}
	return core.NewVec2(u, v), nil
}

func parseFloat(tokens []string) (float64, error) {
	if len(tokens) != 2 {
		return 0, fmt.Errorf("'%s' expects 1 value; got %d", tokens[0], len(tokens)-1)
	}
	return strconv.ParseFloat(tokens[1], 64)
}

// LoadMTL reads a Wavefront material library. Texture paths are resolved
// relative to the library's directory.
func LoadMTL(filename string) (map[string]*material.Material, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open material library: %w", err)
	}
	defer file.Close()

	return ReadMTL(file, filename, filepath.Dir(filename))
}

// ReadMTL parses material statements from r
func ReadMTL(r io.Reader, source, baseDir string) (map[string]*material.Material, error) {
	materials := make(map[string]*material.Material)
	var cur *material.Material

	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		fail := func(format string, args ...interface{}) error {
			return &ParseError{File: source, Line: lineNum, Msg: fmt.Sprintf(format, args...)}
		}

		if tokens[0] == "newmtl" {
			if len(tokens) != 2 {
				return nil, fail("unsupported syntax for 'newmtl'; expected 1 argument; got %d", len(tokens)-1)
			}
			cur = material.NewMaterial(tokens[1])
			materials[cur.Name] = cur
			continue
		}

		if cur == nil {
			return nil, fail("'%s' appears before any newmtl", tokens[0])
		}

		var err error
		switch tokens[0] {
		case "Ka":
			var c core.Vec3
			if c, err = parseVec3(tokens); err == nil {
				cur.SetAmbient(c)
			}
		case "Kd":
			var c core.Vec3
			if c, err = parseVec3(tokens); err == nil {
				cur.SetDiffuse(c)
			}
		case "Ks":
			var c core.Vec3
			if c, err = parseVec3(tokens); err == nil {
				cur.SetSpecular(c)
			}
		case "Ns":
			cur.SpecularExponent, err = parseFloat(tokens)
		case "Ni":
			cur.OpticalDensity, err = parseFloat(tokens)
		case "d":
			cur.Dissolve, err = parseFloat(tokens)
		case "Tr":
			var tr float64
			if tr, err = parseFloat(tokens); err == nil {
				cur.Dissolve = 1 - tr
			}
		case "illum":
			if len(tokens) != 2 {
				err = fmt.Errorf("'illum' expects 1 value; got %d", len(tokens)-1)
			} else {
				cur.IlluminationModel, err = strconv.Atoi(tokens[1])
			}
		case "map_Kd":
			if len(tokens) < 2 {
				err = errors.New("'map_Kd' expects a file name")
			} else {
				// Options such as -s or -o precede the file name
				texture := tokens[len(tokens)-1]
				if !filepath.IsAbs(texture) {
					texture = filepath.Join(baseDir, texture)
				}
				cur.DiffuseTexture = texture
			}
		}

		if err != nil {
			return nil, fail("%v", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", source, err)
	}
	return materials, nil
}
