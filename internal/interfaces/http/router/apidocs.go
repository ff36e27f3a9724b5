package router

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag/v2"
)

// DocsPath serves the Swagger UI and doc.json
const DocsPath = "/swagger/*any"

const docsInstanceName = "swagger"

var registerDocsOnce sync.Once

// swaggerDoc is the subset of a Swagger 2.0 document built from the route table
type swaggerDoc struct {
	Swagger             string                               `json:"swagger"`
	Info                swaggerInfo                          `json:"info"`
	BasePath            string                               `json:"basePath"`
	Consumes            []string                             `json:"consumes"`
	Produces            []string                             `json:"produces"`
	Tags                []swaggerTag                         `json:"tags"`
	Paths               map[string]map[string]swaggerOp      `json:"paths"`
	SecurityDefinitions map[string]swaggerSecurityDefinition `json:"securityDefinitions"`
}

type swaggerInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type swaggerTag struct {
	Name string `json:"name"`
}

type swaggerOp struct {
	Tags        []string                   `json:"tags"`
	Summary     string                     `json:"summary"`
	OperationID string                     `json:"operationId"`
	Parameters  []swaggerParam             `json:"parameters,omitempty"`
	Security    []map[string][]string      `json:"security"`
	Responses   map[string]swaggerResponse `json:"responses"`
}

type swaggerParam struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required"`
	Type     string `json:"type"`
}

type swaggerResponse struct {
	Description string `json:"description"`
}

type swaggerSecurityDefinition struct {
	Type string `json:"type"`
	Name string `json:"name"`
	In   string `json:"in"`
}

// BuildAPIDoc renders the Swagger 2.0 document for the given route groups.
// Every operation requires the bearer token; gin ":param" segments become path parameters.
func BuildAPIDoc(version string, groups []*DomainGroup) ([]byte, error) {
	doc := swaggerDoc{
		Swagger: "2.0",
		Info: swaggerInfo{
			Title:       "Affiliate API",
			Description: "Partner referrals, earnings and payouts.",
			Version:     version,
		},
		BasePath: APIPrefix,
		Consumes: []string{"application/json"},
		Produces: []string{"application/json"},
		Paths:    make(map[string]map[string]swaggerOp),
		SecurityDefinitions: map[string]swaggerSecurityDefinition{
			"BearerAuth": {Type: "apiKey", Name: "Authorization", In: "header"},
		},
	}

	for _, g := range groups {
		doc.Tags = append(doc.Tags, swaggerTag{Name: g.Name()})
		for _, r := range g.Routes() {
			path, params := swaggerPath(r.Path)
			ops, ok := doc.Paths[path]
			if !ok {
				ops = make(map[string]swaggerOp)
				doc.Paths[path] = ops
			}
			ops[strings.ToLower(r.Method)] = swaggerOp{
				Tags:        []string{g.Name()},
				Summary:     r.String(),
				OperationID: operationID(r),
				Parameters:  params,
				Security:    []map[string][]string{{"BearerAuth": {}}},
				Responses: map[string]swaggerResponse{
					"200":     {Description: "Success envelope"},
					"default": {Description: "Error envelope"},
				},
			}
		}
	}
	return json.Marshal(doc)
}

// swaggerPath converts "/referrals/:id" to "/referrals/{id}" and lists its parameters
func swaggerPath(ginPath string) (string, []swaggerParam) {
	segments := strings.Split(ginPath, "/")
	var params []swaggerParam
	for i, seg := range segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			segments[i] = "{" + name + "}"
			params = append(params, swaggerParam{Name: name, In: "path", Required: true, Type: "string"})
		}
	}
	return strings.Join(segments, "/"), params
}

func operationID(r Route) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(r.Method))
	for _, seg := range strings.FieldsFunc(r.Path, func(c rune) bool { return c == '/' || c == '-' || c == ':' }) {
		b.WriteString(strings.ToUpper(seg[:1]) + seg[1:])
	}
	return b.String()
}

// mountAPIDocs registers the document with swag and serves the Swagger UI.
// swag keeps one document per instance name, so only the first engine's doc is kept.
func mountAPIDocs(engine *gin.Engine, version string, groups []*DomainGroup) error {
	doc, err := BuildAPIDoc(version, groups)
	if err != nil {
		return err
	}
	registerDocsOnce.Do(func() {
		swag.Register(docsInstanceName, &swag.Spec{
			Version:          version,
			BasePath:         APIPrefix,
			Title:            "Affiliate API",
			InfoInstanceName: docsInstanceName,
			SwaggerTemplate:  string(doc),
		})
	})
	engine.GET(DocsPath, ginSwagger.WrapHandler(swaggerFiles.Handler))
	return nil
}
