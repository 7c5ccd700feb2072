package docscan

import (
	"go/ast"
	"go/doc"
	"go/token"
	"path/filepath"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// coverPackage tallies the documented and undocumented exported symbols of a
// single package. go/doc has already filtered declarations to the exported
// surface; the IsExported guards below keep the accounting explicit.
func coverPackage(fset *token.FileSet, root, importPath string, pkg *doc.Package, files []*ast.File) model.PackageCoverage {
	cov := model.PackageCoverage{ImportPath: importPath}

	add := func(sym model.Symbol) {
		cov.Total++
		if sym.Documented {
			cov.Documented++
		} else {
			cov.Undocumented = append(cov.Undocumented, sym)
		}
	}

	addValues := func(values []*doc.Value, kind model.SymbolKind) {
		for _, val := range values {
			groupDoc := val.Doc != ""
			for _, spec := range val.Decl.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				specDoc := vs.Doc.Text() != "" || vs.Comment.Text() != ""
				for _, name := range vs.Names {
					if !token.IsExported(name.Name) {
						continue
					}
					add(symbolAt(fset, root, importPath, name.Pos(), name.Name, kind, groupDoc || specDoc))
				}
			}
		}
	}

	// The package clause is a documentation surface of its own. Attribute it
	// to the file carrying the package comment, or the first file if none does.
	clause := files[0]
	for _, f := range files {
		if f.Doc != nil {
			clause = f
			break
		}
	}
	add(symbolAt(fset, root, importPath, clause.Name.Pos(), pkg.Name, model.SymbolKindPackage, pkg.Doc != ""))

	for _, fn := range pkg.Funcs {
		if !token.IsExported(fn.Name) {
			continue
		}
		add(symbolAt(fset, root, importPath, fn.Decl.Pos(), fn.Name, model.SymbolKindFunc, fn.Doc != ""))
	}

	for _, typ := range pkg.Types {
		exported := token.IsExported(typ.Name)
		if exported {
			add(symbolAt(fset, root, importPath, typ.Decl.Pos(), typ.Name, model.SymbolKindType, typ.Doc != ""))
		}
		// Constructors are package-level API even when grouped under a type.
		for _, fn := range typ.Funcs {
			if !token.IsExported(fn.Name) {
				continue
			}
			add(symbolAt(fset, root, importPath, fn.Decl.Pos(), fn.Name, model.SymbolKindFunc, fn.Doc != ""))
		}
		for _, m := range typ.Methods {
			if !exported || !token.IsExported(m.Name) {
				continue
			}
			add(symbolAt(fset, root, importPath, m.Decl.Pos(), typ.Name+"."+m.Name, model.SymbolKindMethod, m.Doc != ""))
		}
		addValues(typ.Consts, model.SymbolKindConst)
		addValues(typ.Vars, model.SymbolKindVar)
	}

	addValues(pkg.Consts, model.SymbolKindConst)
	addValues(pkg.Vars, model.SymbolKindVar)

	return cov
}

// symbolAt builds a Symbol with its position resolved relative to the scan root.
func symbolAt(fset *token.FileSet, root, importPath string, pos token.Pos, name string, kind model.SymbolKind, documented bool) model.Symbol {
	position := fset.Position(pos)
	file := position.Filename
	if rel, err := filepath.Rel(root, file); err == nil {
		file = filepath.ToSlash(rel)
	}
	return model.Symbol{
		Package:    importPath,
		Name:       name,
		Kind:       kind,
		File:       file,
		Line:       position.Line,
		Documented: documented,
	}
}
