package relay

import (
	"context"
	"io"
)

type Demo struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

type Generic[T any] struct {
	ID   int `json:"id"`
	Data T   `json:"data"`
}

type RequestDemo struct {
	Prompt string   `json:"prompt"`
	Tags   []string `json:"tags,omitempty"`
	File   File     `json:"file"`
}

type StreamRequest struct {
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type Page struct {
	Size  int    `json:"size"`
	Page  int    `json:"page,omitempty"`
	Order string `query:"order_by,omitempty"`
	Skip  string `json:"-"`
}

type GoodService interface {
	DemoPostMethod(ctx context.Context, request RequestDemo, demoID int64) (*Demo, error)
	DemoGetMethod(ctx context.Context, demoID int64, size *int, page int) ([]Demo, error)
}

func goodServiceDecl() *InterfaceDecl {
	decl := Declare[GoodService](
		Resource("/api"),
		Headers(Header("FirstKey", "FirstVal"), Header("SecondKey", "SecondVal")),
	)
	decl.Method("DemoPostMethod", POST("/demos/{demoId}"), Multipart(), Header("ThirdKey", "ThirdVal")).
		Params(Body(), Path("demoId"))
	decl.Method("DemoGetMethod", GET("/demos/{demoId}/subdemos")).
		Params(Path("demoId"), Query("size"), Query("page"))
	return decl
}

type NotSavedService interface {
	Anything(ctx context.Context) (string, error)
}

type NotAnnotatedService interface {
	AnnotatedMethod(ctx context.Context) (string, error)
	UnannotatedMethod(ctx context.Context) (string, error)
}

type BadPathParamService interface {
	UnmatchedPathParamMethod(ctx context.Context, id int) (string, error)
}

type WithResourcePathParamAndDefaultMethods interface {
	Greet(name string) string
	Version() string
}

type SyncService interface {
	GetDemoPlain(ctx context.Context, id int) (string, error)
	GetDemo(ctx context.Context, id int) (Demo, error)
	GetGenericDemo(ctx context.Context, id int) (Generic[Demo], error)
	GetDemos(ctx context.Context, page Page) ([]Demo, error)
	GetDemoStream(ctx context.Context, request StreamRequest) (*Stream[Demo], error)
	GetFile(ctx context.Context, name string) (io.ReadCloser, error)
	DeleteDemo(ctx context.Context, id int, token string) error
	GetBroken(ctx context.Context) (Demo, error)
	GetSlow(ctx context.Context) (Demo, error)
	UnsupportedMethod(ctx context.Context) (chan int, error)
	DefaultMethod(name string) string
}

func syncServiceDecl() *InterfaceDecl {
	decl := Declare[SyncService](Resource("/api"))
	decl.Method("GetDemoPlain", GET("/demos/{id}/plain")).Params(Path("id"))
	decl.Method("GetDemo", GET("/demos/{id}")).Params(Path("id"))
	decl.Method("GetGenericDemo", GET("/generic/{id}")).Params(Path("id"))
	decl.Method("GetDemos", GET("/demos")).Params(Query(""))
	decl.Method("GetDemoStream", POST("/demos/stream")).Params(Body())
	decl.Method("GetFile", GET("/files/{name}")).Params(Path("name"))
	decl.Method("DeleteDemo", DELETE("/demos/{id}")).Params(Path("id"), HeaderParam("Authorization"))
	decl.Method("GetBroken", GET("/broken"))
	decl.Method("GetSlow", GET("/slow"))
	decl.Method("UnsupportedMethod", GET("/unsupported"))
	decl.Default("DefaultMethod", func(ctx context.Context, args []any) (any, error) {
		return "Hello " + Arg[string](args, 0), nil
	})
	return decl
}

type AsyncService interface {
	GetDemoPlain(ctx context.Context, id int) *Future[string]
	GetDemo(ctx context.Context, id int) *Future[Demo]
	GetDemos(ctx context.Context, page Page) *Future[[]Demo]
	GetDemoStream(ctx context.Context, request StreamRequest) *Future[*Stream[Demo]]
	GetFile(ctx context.Context, name string) *Future[io.ReadCloser]
	DeleteDemo(ctx context.Context, id int, token string) *Future[Demo]
	GetSlow(ctx context.Context) *Future[Demo]
}

func asyncServiceDecl() *InterfaceDecl {
	decl := Declare[AsyncService](Resource("/api"))
	decl.Method("GetDemoPlain", GET("/demos/{id}/plain")).Params(Path("id"))
	decl.Method("GetDemo", GET("/demos/{id}")).Params(Path("id"))
	decl.Method("GetDemos", GET("/demos")).Params(Query(""))
	decl.Method("GetDemoStream", POST("/demos/stream")).Params(Body())
	decl.Method("GetFile", GET("/files/{name}")).Params(Path("name"))
	decl.Method("DeleteDemo", DELETE("/demos/{id}")).Params(Path("id"), HeaderParam("Authorization"))
	decl.Method("GetSlow", GET("/slow"))
	return decl
}
