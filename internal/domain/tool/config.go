package tool

// Config 工具配置，構造後不可變
type Config struct {
	category   Category
	name       string
	parameters map[string]string
}

// NewConfig 創建工具配置，參數 map 會被複製，調用方之後的修改不會影響配置
func NewConfig(category Category, name string, parameters map[string]string) Config {
	return Config{
		category:   category,
		name:       name,
		parameters: copyParameters(parameters),
	}
}

func (c Config) Category() Category { return c.category }
func (c Config) Name() string       { return c.name }

// Parameters 返回參數副本
func (c Config) Parameters() map[string]string {
	return copyParameters(c.parameters)
}

// Parameter 讀取單個參數
func (c Config) Parameter(key string) (string, bool) {
	v, ok := c.parameters[key]
	return v, ok
}

func copyParameters(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
