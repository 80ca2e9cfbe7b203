package openapi

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	// Version of the emitted document
	Version = "3.0.3"

	bearerScheme = "bearerAuth"
)

// Param is a query parameter of a route
type Param struct {
	Name        string
	Description string
	Required    bool
	Integer     bool
}

// Route describes one HTTP operation
type Route struct {
	Method  string
	Path    string // gin syntax, ":id" segments become "{id}"
	Summary string
	Tag     string
	Secured bool
	Query   []Param
	// Produces overrides the application/json response
	Produces string
}

// BuildDocument renders routes as an OpenAPI 3 document and validates it
func BuildDocument(ctx context.Context, title, version string, routes []Route) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerScheme: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}

	sorted := append([]Route(nil), routes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, r := range sorted {
		path, pathParams := convertPath(r.Path)
		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}
		item.SetOperation(r.Method, operation(r, pathParams))
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

func operation(r Route, pathParams []string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Responses = openapi3.NewResponsesWithCapacity(3)
	op.Summary = r.Summary
	op.OperationID = operationID(r)
	if r.Tag != "" {
		op.Tags = []string{r.Tag}
	}

	for _, name := range pathParams {
		p := openapi3.NewPathParameter(name).WithSchema(openapi3.NewIntegerSchema())
		op.AddParameter(p)
	}
	for _, q := range r.Query {
		schema := openapi3.NewStringSchema()
		if q.Integer {
			schema = openapi3.NewIntegerSchema()
		}
		p := openapi3.NewQueryParameter(q.Name).WithSchema(schema).WithDescription(q.Description).WithRequired(q.Required)
		op.AddParameter(p)
	}

	produces := r.Produces
	if produces == "" {
		produces = "application/json"
	}
	ok := openapi3.NewResponse().
		WithDescription(http.StatusText(http.StatusOK)).
		WithContent(openapi3.NewContentWithSchema(openapi3.NewSchema(), []string{produces}))
	op.AddResponse(http.StatusOK, ok)
	op.AddResponse(http.StatusBadRequest, errorResponse(http.StatusBadRequest))

	if r.Secured {
		op.Security = openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate(bearerScheme))
		op.AddResponse(http.StatusUnauthorized, errorResponse(http.StatusUnauthorized))
	}
	return op
}

// errorResponse is the {"detail": "..."} body shared by every failure
func errorResponse(status int) *openapi3.Response {
	schema := openapi3.NewObjectSchema().WithProperty("detail", openapi3.NewStringSchema())
	return openapi3.NewResponse().
		WithDescription(http.StatusText(status)).
		WithJSONSchema(schema)
}

// convertPath turns "/pedidos/:id" into "/pedidos/{id}" and lists the parameters
func convertPath(path string) (string, []string) {
	segments := strings.Split(path, "/")
	var params []string
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			params = append(params, name)
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/"), params
}

func operationID(r Route) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(r.Method))
	for _, seg := range strings.Split(r.Path, "/") {
		seg = strings.TrimPrefix(seg, ":")
		for _, part := range strings.FieldsFunc(seg, func(r rune) bool { return r == '-' || r == '_' }) {
			b.WriteString(strings.ToUpper(part[:1]) + part[1:])
		}
	}
	return b.String()
}
