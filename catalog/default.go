package catalog

import "github.com/getkin/kin-openapi/openapi3"

// Known platform identifiers.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
	PlatformDesktop = "desktop"
)

var mobile = []string{PlatformIOS, PlatformAndroid}

// Default returns the built-in catalogue of host methods.
func Default() *Catalog {
	return New(
		Method{Name: "VKWebAppInit", Request: true, Receive: true},
		Method{Name: "VKWebAppGetUserInfo", Request: true, Receive: true},
		Method{Name: "VKWebAppGetClientVersion", Request: true, Receive: true},
		Method{Name: "VKWebAppGetSystemInfo", Request: true, Receive: true},
		Method{
			Name: "VKWebAppStorageGet", Request: true, Receive: true,
			PropsSchema: objectSchema(map[string]*openapi3.Schema{
				"keys": openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
			}, "keys"),
		},
		Method{
			Name: "VKWebAppStorageSet", Request: true, Receive: true,
			PropsSchema: objectSchema(map[string]*openapi3.Schema{
				"key":   openapi3.NewStringSchema(),
				"value": openapi3.NewStringSchema(),
			}, "key", "value"),
		},
		Method{
			Name: "VKWebAppShare", Request: true, Receive: true,
			Platforms: []string{PlatformIOS, PlatformAndroid, PlatformWeb},
			PropsSchema: objectSchema(map[string]*openapi3.Schema{
				"link": openapi3.NewStringSchema(),
			}, "link"),
		},
		Method{
			Name: "VKWebAppSetViewSettings", Request: true,
			Platforms: mobile,
			PropsSchema: objectSchema(map[string]*openapi3.Schema{
				"status_bar_style": openapi3.NewStringSchema().WithEnum("light", "dark"),
			}, "status_bar_style"),
		},
		Method{Name: "VKWebAppClose", Request: true, Platforms: mobile},
		Method{Name: "VKWebAppViewHide", Receive: true},
		Method{Name: "VKWebAppViewRestore", Receive: true},
		Method{Name: "VKWebAppUpdateConfig", Receive: true},
	)
}

func objectSchema(props map[string]*openapi3.Schema, required ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for name, p := range props {
		s.WithProperty(name, p)
	}
	s.Required = required
	return s
}
