package filter

import "strings"

// DefaultCacheSize is the number of compiled expressions a Compiler keeps
const DefaultCacheSize = 100

// Compiler compiles expressions and caches the results
type Compiler struct {
	programs *lru[*ExprFilter]
}

// NewCompiler creates a compiler caching up to size programs
func NewCompiler(size int) *Compiler {
	return &Compiler{programs: newLRU[*ExprFilter](size)}
}

// Compile returns the cached filter for expression, compiling it on a miss.
// Surrounding whitespace does not affect the cache key.
func (c *Compiler) Compile(expression string) (*ExprFilter, error) {
	key := strings.TrimSpace(expression)
	if f, ok := c.programs.get(key); ok {
		return f, nil
	}

	f, err := CompileExprFilter(expression)
	if err != nil {
		return nil, err
	}

	c.programs.add(key, f)
	return f, nil
}

// Cached returns the number of compiled filters held
func (c *Compiler) Cached() int {
	return c.programs.len()
}
