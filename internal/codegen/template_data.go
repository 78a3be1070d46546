package codegen

import (
	"fmt"
	"strings"

	"datatree-mapper/internal/common"
	"datatree-mapper/internal/record"
)

// typeData holds all data needed for the per-type template.
type typeData struct {
	PackageName      string
	Filename         string
	Imports          []importSpec
	TypeName         string
	ClassVar         string
	DataType         string
	Doc              []string
	GenerateComments bool
	HasName          bool
	FixedName        string
	Base             string
	Params           []fieldData
	Accessors        []fieldData
	Collections      []collectionData
}

// fieldData represents one schema field of a generated type.
type fieldData struct {
	Name      string
	GoName    string
	Doc       string
	ArgType   string
	ValueType string
	ArgSet    string
	Optional  bool
	Records   bool
	Many      bool
	Wrapper   string
	Settable  bool
}

// collectionData represents the keyed access methods of a many-valued child field.
type collectionData struct {
	Field    string
	Add      string
	Get      string
	Create   string
	ItemType string
	Wrapper  string
}

// classesData holds the data of classes.go.
type classesData struct {
	PackageName string
	Namespace   string
	Imports     []importSpec
	Classes     []classRef
}

type classRef struct {
	Var      string
	DataType string
}

// importSpec is one import line of a generated file.
type importSpec struct {
	Alias string
	Path  string
}

// methods promoted from *record.Record that accessors must not shadow.
var reserved = map[string]bool{
	"Name": true, "Class": true, "ObjectID": true, "Parent": true, "SetParent": true,
	"Children": true, "RemoveChild": true, "Get": true, "Set": true, "Modified": true,
	"SetModified": true, "Source": true, "SetSource": true, "Append": true, "Extend": true,
	"String": true, "Record": true, "Add": true, "Item": true, "Items": true,
	"Create": true, "RemoveItem": true,
}

func (g *Generator) buildTypeData(cls *record.Class) *typeData {
	name := g.generated[cls.DataType]

	data := &typeData{
		PackageName:      g.config.PackageName,
		Filename:         common.ToSnake(name) + ".go",
		Imports:          []importSpec{{Path: "fmt"}, {Path: RecordImport}},
		TypeName:         name,
		ClassVar:         classVar(name),
		DataType:         cls.DataType,
		GenerateComments: g.config.GenerateComments,
		HasName:          cls.HasNameParam(),
		FixedName:        cls.FixedName,
	}

	if cls.Doc != "" {
		data.Doc = strings.Split(strings.TrimSpace(cls.Doc), "\n")
	}

	if cls.Base != nil {
		data.Base = g.generated[cls.Base.DataType]
	}

	used := map[string]bool{"Name": true}

	for _, f := range cls.AllFields() {
		fd := g.buildField(f, used)

		if !f.Internal {
			data.Params = append(data.Params, fd)
		}

		data.Accessors = append(data.Accessors, fd)
	}

	for cur := cls; cur != nil; cur = cur.Base {
		for _, col := range cur.Collections {
			data.Collections = append(data.Collections, g.buildCollection(col))
		}
	}

	return data
}

func (g *Generator) buildField(f *record.Field, used map[string]bool) fieldData {
	fd := fieldData{
		Name:     f.Name,
		GoName:   goName(f.Name, used),
		Doc:      firstLine(f.Doc),
		Settable: !f.Internal,
	}

	switch {
	case f.Type.IsRecord():
		fd.Records = true
		fd.Many = f.Type.Many
		fd.Wrapper = g.generated[recordDataType(f.Type)]

		elem := "*record.Record"
		if fd.Wrapper != "" {
			elem = fd.Wrapper
		}

		fd.ValueType = elem
		if fd.Many {
			fd.ValueType = "[]" + elem
		}

		fd.ArgType = fd.ValueType
		fd.Settable = false
	default:
		fd.ValueType = valueType(f.Type)
		fd.ArgType = fd.ValueType
		fd.Optional = !f.Required && !nilable(fd.ValueType)

		if fd.Optional {
			fd.ArgType = "*" + fd.ValueType
		}
	}

	fd.ArgSet = argSet(fd)

	return fd
}

func (g *Generator) buildCollection(col *record.Collection) collectionData {
	cd := collectionData{
		Field:    col.Field,
		Add:      col.Add,
		Get:      col.Get,
		Create:   col.Create,
		Wrapper:  g.generated[col.DataType],
		ItemType: "*record.Record",
	}

	if cd.Wrapper != "" {
		cd.ItemType = cd.Wrapper
	}

	return cd
}

func (g *Generator) buildClassesData(namespace string, classes []*record.Class) *classesData {
	data := &classesData{
		PackageName: g.config.PackageName,
		Namespace:   namespace,
		Imports:     []importSpec{{Path: "errors"}, {Path: BuildImport}, {Path: RecordImport}},
	}

	for _, cls := range classes {
		data.Classes = append(data.Classes, classRef{Var: classVar(g.generated[cls.DataType]), DataType: cls.DataType})
	}

	return data
}

func recordDataType(t record.FieldType) string {
	if t.Class != nil && t.Class.DataType != "" {
		return t.Class.DataType
	}

	return t.DataType
}

// valueType maps a field dtype and shape to the Go type its values are stored as.
func valueType(t record.FieldType) string {
	var elem string

	switch {
	case t.Dtype.IsRef():
		elem = "*record.Record"
	case t.Dtype.IsZero() || t.Dtype.IsCompound():
		return "any"
	default:
		k, err := t.Dtype.Kind()
		if err != nil || k.GoType() == nil {
			return "any"
		}

		elem = k.GoType().String()
		if elem == "[]uint8" {
			elem = "[]byte"
		}
	}

	dims := -1
	for _, option := range t.Shape {
		if dims >= 0 && dims != len(option) {
			return "any"
		}

		dims = len(option)
	}

	return strings.Repeat("[]", max(dims, 0)) + elem
}

func nilable(goType string) bool {
	return goType == "any" || strings.HasPrefix(goType, "[]") || strings.HasPrefix(goType, "*")
}

// argSet renders the statement copying one Args field into record.Args.
func argSet(fd fieldData) string {
	key := fmt.Sprintf("a[%q]", fd.Name)
	src := "args." + fd.GoName

	switch {
	case fd.Records && fd.Wrapper != "" && fd.Many:
		return fmt.Sprintf("\tif len(%[1]s) > 0 {\n\t\trs := make([]*record.Record, len(%[1]s))\n"+
			"\t\tfor i, v := range %[1]s {\n\t\t\trs[i] = v.Record\n\t\t}\n\n\t\t%[2]s = rs\n\t}", src, key)
	case fd.Records && fd.Wrapper != "":
		return fmt.Sprintf("\tif %[1]s.Record != nil {\n\t\t%[2]s = %[1]s.Record\n\t}", src, key)
	case fd.Records && fd.Many:
		return fmt.Sprintf("\tif len(%[1]s) > 0 {\n\t\t%[2]s = %[1]s\n\t}", src, key)
	case fd.Optional:
		return fmt.Sprintf("\tif %[1]s != nil {\n\t\t%[2]s = *%[1]s\n\t}", src, key)
	case nilable(fd.ArgType):
		return fmt.Sprintf("\tif %[1]s != nil {\n\t\t%[2]s = %[1]s\n\t}", src, key)
	default:
		return fmt.Sprintf("\t%s = %s", key, src)
	}
}

// goName returns a unique exported identifier for a field name.
func goName(field string, used map[string]bool) string {
	name := common.ToCamel(field)
	if name == "" {
		name = "Field"
	}

	if reserved[name] {
		name += "Field"
	}

	base := name
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}

	used[name] = true

	return name
}

func classVar(typeName string) string {
	return typeName + "Class"
}

func firstLine(doc string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(doc), "\n")
	return line
}
