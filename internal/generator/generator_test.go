package generator

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/internal/parser"
)

const source = `package demo

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/toyz/relay/pkg/relay"
)

//relay::client
//relay::resource /api
//relay::header X-Client relay
type DemoService interface {
	//relay::get /demos/{id}
	//relay::path id
	GetDemo(ctx context.Context, id uuid.UUID) (Demo, error)

	//relay::get /demos
	//relay::query size
	ListDemos(ctx context.Context, filter string, size int) ([]Demo, error)

	//relay::post /demos/upload
	//relay::multipart
	//relay::body request
	Upload(ctx context.Context, request UploadRequest) error

	//relay::get /events
	//relay::query tags tag
	Events(ctx context.Context, tags ...string) *relay.Future[*relay.Stream[Demo]]

	//relay::get /files/{name}
	//relay::path name
	Download(name string) (io.ReadCloser, error)

	//relay::default -Func=greet
	Greet(name string, at time.Time) string

	//relay::default -Func=forget
	Forget(ctx context.Context)
}
`

func generate(t *testing.T, opts Options) (*models.GeneratedFile, string) {
	t.Helper()
	metadata, err := parser.NewParser().ParseSource("demo.go", source)
	require.NoError(t, err)
	metadata.PackagePath = "/src/demo"

	file, err := NewGenerator(opts).Generate(metadata)
	require.NoError(t, err)
	require.NotNil(t, file)
	return file, string(file.Content)
}

func TestGenerate_DeclarationTable(t *testing.T) {
	file, content := generate(t, Options{})

	assert.Equal(t, filepath.Join("/src/demo", models.DefaultOutputFile), file.FilePath)
	assert.Equal(t, "demo", file.PackageName)

	assert.Contains(t, content, models.GeneratedHeader)
	assert.Contains(t, content, `var DemoServiceDecl = relay.Declare[DemoService](
	relay.Resource("/api"),
	relay.Header("X-Client", "relay"),
)`)
	assert.Contains(t, content, `DemoServiceDecl.Method("GetDemo", relay.GET("/demos/{id}")).
		Params(relay.Path("id"))`)
	assert.Contains(t, content, `DemoServiceDecl.Method("ListDemos", relay.GET("/demos")).
		Params(relay.None, relay.Query("size"))`)
	assert.Contains(t, content, `DemoServiceDecl.Method("Upload", relay.POST("/demos/upload"), relay.Multipart()).
		Params(relay.Body())`)
	assert.Contains(t, content, `return greet(relay.Arg[string](args, 0), relay.Arg[time.Time](args, 1)), nil`)
	assert.Contains(t, content, "forget(ctx)\n\t\treturn nil, nil")
}

func TestGenerate_Adapter(t *testing.T) {
	_, content := generate(t, Options{})

	assert.Contains(t, content, "type relayDemoService struct {\n\tstub *relay.Stub\n}")
	assert.Contains(t, content, "func NewDemoService(client *relay.Client) (DemoService, error) {")
	assert.Contains(t, content, `return relay.Call[Demo](ctx, c.stub, "GetDemo", id)`)
	assert.Contains(t, content, `return relay.Call[[]Demo](ctx, c.stub, "ListDemos", filter, size)`)
	assert.Contains(t, content, `return relay.Exec(ctx, c.stub, "Upload", request)`)
	assert.Contains(t, content, "func (c *relayDemoService) Events(ctx context.Context, tags ...string) *relay.Future[*relay.Stream[Demo]] {")
	assert.Contains(t, content, `return relay.Go[*relay.Stream[Demo]](ctx, c.stub, "Events", tags)`)
	assert.Contains(t, content, `return relay.Call[io.ReadCloser](context.Background(), c.stub, "Download", name)`)
	assert.Contains(t, content, `return relay.MustCall[string](context.Background(), c.stub, "Greet", name, at)`)
	assert.Contains(t, content, `relay.MustCall[any](ctx, c.stub, "Forget")`)
	assert.NotContains(t, content, "fx.Provide")
}

func TestGenerate_ImportsAreFilteredAndFormatted(t *testing.T) {
	_, content := generate(t, Options{})

	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, "relay_gen.go", content, goparser.ParseComments)
	require.NoError(t, err, content)
	assert.True(t, ast.IsGenerated(file))

	var paths []string
	for _, imp := range file.Imports {
		paths = append(paths, imp.Path.Value)
	}
	assert.ElementsMatch(t, []string{
		`"context"`,
		`"io"`,
		`"time"`,
		`"github.com/google/uuid"`,
		`"github.com/toyz/relay/pkg/relay"`,
	}, paths)
}

func TestGenerate_FxModule(t *testing.T) {
	_, content := generate(t, Options{Fx: true, OutputFile: "clients_gen.go"})

	assert.Contains(t, content, `"go.uber.org/fx"`)
	assert.Contains(t, content, "var DemoServiceModule = fx.Provide(NewDemoService)")
}

func TestGenerate_ReceiverAvoidsParameterNames(t *testing.T) {
	metadata, err := parser.NewParser().ParseSource("c.go", `package demo

//relay::client
type Shadow interface {
	//relay::get /x
	//relay::query c
	Get(c string) (string, error)
}
`)
	require.NoError(t, err)

	file, err := NewGenerator(Options{}).Generate(metadata)
	require.NoError(t, err)
	assert.Contains(t, string(file.Content), `return relay.Call[string](context.Background(), rc.stub, "Get", c)`)
}

func TestGenerate_NoClients(t *testing.T) {
	file, err := NewGenerator(Options{}).Generate(&models.PackageMetadata{PackageName: "empty"})
	require.NoError(t, err)
	assert.Nil(t, file)

	_, err = NewGenerator(Options{}).Generate(nil)
	assert.EqualError(t, err, "metadata cannot be nil")
}
