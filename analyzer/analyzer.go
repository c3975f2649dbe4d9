// Package analyzer reports coroutine misuse that cannot be diagnosed at
// run time: contexts escaping into goroutines started by a coroutine body,
// and bodies driving their own coroutine, which can never make progress.
package analyzer

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"
)

const coroPackage = "github.com/stealthrocket/coro"

// driveMethods are the Coroutine methods reserved for the driving side.
var driveMethods = map[string]bool{
	"Resume":   true,
	"Recv":     true,
	"Stop":     true,
	"Shutdown": true,
	"Join":     true,
	"Values":   true,
}

// driveFuncs are the package functions that drive a coroutine passed to
// them.
var driveFuncs = map[string]bool{
	"Run":     true,
	"RunAll":  true,
	"Collect": true,
}

// Diagnostic is a finding at a position in the checked source.
type Diagnostic struct {
	Pos token.Position
	Msg string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Msg)
}

// Option configures the checker.
type Option func(*checker)

// WithTests instructs the checker to also load and check test files.
func WithTests(enabled bool) Option {
	return func(c *checker) { c.tests = enabled }
}

type checker struct {
	tests bool

	fset  *token.FileSet
	seen  map[string]bool
	diags []Diagnostic
}

// Check reports coroutine misuse in the packages at path.
//
// The path argument can either be a path to a package, or a pattern that
// matches multiple packages (for example, /path/to/module/...). The path
// can be absolute, or relative to the current working directory.
func Check(path string, options ...Option) ([]Diagnostic, error) {
	c := &checker{
		fset: token.NewFileSet(),
		seen: map[string]bool{},
	}
	for _, option := range options {
		option(c)
	}
	return c.check(path)
}

func (c *checker) check(path string) ([]Diagnostic, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	var dotdotdot bool
	absPath, dotdotdot = strings.CutSuffix(absPath, "...")
	if s, err := os.Stat(absPath); err != nil {
		return nil, err
	} else if !s.IsDir() {
		// Make sure we're loading whole packages.
		absPath = filepath.Dir(absPath)
	}
	var pattern string
	if dotdotdot {
		pattern = "./..."
	} else {
		pattern = "."
	}

	conf := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedDeps |
			packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Fset:  c.fset,
		Dir:   absPath,
		Tests: c.tests,
	}
	pkgs, err := packages.Load(conf, pattern)
	if err != nil {
		return nil, fmt.Errorf("packages.Load %q: %w", path, err)
	}
	err = nil
	packages.Visit(pkgs, func(p *packages.Package) bool {
		for _, e := range p.Errors {
			err = e
			break
		}
		return err == nil
	}, nil)
	if err != nil {
		return nil, err
	}

	for _, p := range pkgs {
		for _, f := range p.Syntax {
			// With Tests enabled the same files load once per package
			// variant; check each file once.
			name := c.fset.Position(f.Pos()).Filename
			if c.seen[name] {
				continue
			}
			c.seen[name] = true
			c.checkFile(p, f)
		}
	}

	sort.Slice(c.diags, func(i, j int) bool {
		di, dj := c.diags[i], c.diags[j]
		if di.Pos.Filename != dj.Pos.Filename {
			return di.Pos.Filename < dj.Pos.Filename
		}
		return di.Pos.Offset < dj.Pos.Offset
	})
	return c.diags, nil
}

func (c *checker) checkFile(p *packages.Package, f *ast.File) {
	// Bind coroutine handles to the New calls that produce them, so that
	// drive calls inside a body can be attributed to the body's own
	// coroutine rather than to a nested one.
	handles := map[types.Object]*ast.CallExpr{}
	ast.Inspect(f, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignStmt:
			if len(n.Lhs) != len(n.Rhs) {
				return true
			}
			for i, rhs := range n.Rhs {
				call, ok := rhs.(*ast.CallExpr)
				if !ok || !c.isNewCall(p, call) {
					continue
				}
				if id, ok := n.Lhs[i].(*ast.Ident); ok {
					if obj := p.TypesInfo.ObjectOf(id); obj != nil {
						handles[obj] = call
					}
				}
			}
		case *ast.ValueSpec:
			if len(n.Names) != len(n.Values) {
				return true
			}
			for i, rhs := range n.Values {
				call, ok := rhs.(*ast.CallExpr)
				if !ok || !c.isNewCall(p, call) {
					continue
				}
				if obj := p.TypesInfo.ObjectOf(n.Names[i]); obj != nil {
					handles[obj] = call
				}
			}
		}
		return true
	})

	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || !c.isNewCall(p, call) {
			return true
		}
		if len(call.Args) == 0 {
			return true
		}
		body, ok := call.Args[0].(*ast.FuncLit)
		if !ok {
			// The body is a named function or method value; its statements
			// are out of reach here.
			return true
		}
		c.checkBody(p, call, body, handles)
		return true
	})
}

func (c *checker) isNewCall(p *packages.Package, call *ast.CallExpr) bool {
	fn, ok := typeutil.Callee(p.TypesInfo, call).(*types.Func)
	if !ok {
		return false
	}
	return fn.Name() == "New" && fn.Pkg() != nil && fn.Pkg().Path() == coroPackage
}

func (c *checker) checkBody(p *packages.Package, newCall *ast.CallExpr, body *ast.FuncLit, handles map[types.Object]*ast.CallExpr) {
	var ctxObj types.Object
	if params := body.Type.Params; params != nil && len(params.List) > 0 && len(params.List[0].Names) > 0 {
		ctxObj = p.TypesInfo.ObjectOf(params.List[0].Names[0])
	}

	ast.Inspect(body.Body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.GoStmt:
			if ctxObj == nil {
				return true
			}
			reported := false
			ast.Inspect(n, func(n ast.Node) bool {
				if reported {
					return false
				}
				if id, ok := n.(*ast.Ident); ok && p.TypesInfo.ObjectOf(id) == ctxObj {
					c.report(id.Pos(), fmt.Sprintf("coroutine context %s passed to a goroutine started inside the coroutine body", id.Name))
					reported = true
				}
				return true
			})

		case *ast.CallExpr:
			if sel, ok := n.Fun.(*ast.SelectorExpr); ok && driveMethods[sel.Sel.Name] {
				if id, ok := sel.X.(*ast.Ident); ok {
					if obj := p.TypesInfo.ObjectOf(id); obj != nil && handles[obj] == newCall {
						c.report(sel.Sel.Pos(), fmt.Sprintf("%s called on the coroutine from inside its own body", sel.Sel.Name))
						return true
					}
				}
			}
			if fn, ok := typeutil.Callee(p.TypesInfo, n).(*types.Func); ok && fn.Pkg() != nil && fn.Pkg().Path() == coroPackage && driveFuncs[fn.Name()] {
				for _, arg := range n.Args {
					if id, ok := arg.(*ast.Ident); ok {
						if obj := p.TypesInfo.ObjectOf(id); obj != nil && handles[obj] == newCall {
							c.report(id.Pos(), fmt.Sprintf("coroutine passed to %s from inside its own body", fn.Name()))
						}
					}
				}
			}
		}
		return true
	})
}

func (c *checker) report(pos token.Pos, msg string) {
	c.diags = append(c.diags, Diagnostic{Pos: c.fset.Position(pos), Msg: msg})
}
