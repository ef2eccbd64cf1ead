package settings

import "fmt"

// Definition describes one configurable setting. Definitions live in the package catalog
// and are never mutated after init.
type Definition struct {
	Code      int       `json:"code"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Type      ValueType `json:"value_type"`
	Default   Value     `json:"default"`
	GroupCode int       `json:"group_code"`
}

// Group is a named category of settings.
type Group struct {
	Code        int           `json:"code"`
	Key         string        `json:"key"`
	Name        string        `json:"name"`
	Definitions []*Definition `json:"definitions"`
}

type groupRow struct {
	code int
	key  string
	name string
	defs []Definition
}

// catalogTable is the fixed declaration of every group and its members, in display order.
var catalogTable = []groupRow{
	{
		code: 1, key: "GENERAL", name: "General",
		defs: []Definition{
			{Code: 101, Key: "AUTO_DOWNLOAD", Name: "Auto download", Type: TypeBool, Default: BoolValue(true)},
			{Code: 102, Key: "DOWNLOAD_PATH", Name: "Download directory", Type: TypeString, Default: StringValue("./downloads")},
		},
	},
	{
		code: 2, key: "NOTIFICATION", name: "Notification",
		defs: []Definition{
			{Code: 201, Key: "NOTIFY_ON_SUCCESS", Name: "Notify on success", Type: TypeBool, Default: BoolValue(true)},
			{Code: 202, Key: "NOTIFY_ON_FAILURE", Name: "Notify on failure", Type: TypeBool, Default: BoolValue(true)},
			{Code: 210, Key: "IOS_BARK_DEVICE_KEY", Name: "iOS Bark device key", Type: TypeString, Default: StringValue("")},
		},
	},
	{
		code: 3, key: "ADVANCED", name: "Advanced",
		defs: []Definition{
			{Code: 301, Key: "MAX_CONCURRENT_TASKS", Name: "Max concurrent tasks", Type: TypeInt, Default: IntValue(3)},
			{Code: 302, Key: "TASK_RETRY_COUNT", Name: "Task retry count", Type: TypeInt, Default: IntValue(3)},
		},
	},
	{
		code: 4, key: "DOWNLOAD", name: "Download",
		defs: []Definition{
			{Code: 401, Key: "DOWNLOAD_PATH", Name: "Download directory", Type: TypeString, Default: StringValue("./downloads")},
			{Code: 402, Key: "PROXY_URL", Name: "Proxy URL", Type: TypeString, Default: StringValue("")},
		},
	},
}

// Catalog indexes definitions and groups by code.
type Catalog struct {
	defs     []*Definition
	groups   []*Group
	byCode   map[int]*Definition
	byGroups map[int]*Group
}

// newCatalog builds a catalog from group rows, rejecting duplicate codes and defaults
// whose type differs from the declared type.
func newCatalog(rows []groupRow) (*Catalog, error) {
	c := &Catalog{
		byCode:   make(map[int]*Definition),
		byGroups: make(map[int]*Group),
	}

	for _, row := range rows {
		if _, dup := c.byGroups[row.code]; dup {
			return nil, fmt.Errorf("duplicate setting group code %d", row.code)
		}

		g := &Group{Code: row.code, Key: row.key, Name: row.name}

		for i := range row.defs {
			d := row.defs[i]
			d.GroupCode = row.code

			if _, dup := c.byCode[d.Code]; dup {
				return nil, fmt.Errorf("duplicate setting code %d", d.Code)
			}

			if d.Default.Type() != d.Type {
				return nil, fmt.Errorf("setting %d: default is %s, declared %s", d.Code, d.Default.Type(), d.Type)
			}

			c.byCode[d.Code] = &d
			c.defs = append(c.defs, &d)
			g.Definitions = append(g.Definitions, &d)
		}

		c.byGroups[g.Code] = g
		c.groups = append(c.groups, g)
	}

	return c, nil
}

func mustBuildCatalog(rows []groupRow) *Catalog {
	c, err := newCatalog(rows)
	if err != nil {
		panic(err)
	}

	return c
}

var defaultCatalog = mustBuildCatalog(catalogTable)

// Lookup returns the definition for code.
func (c *Catalog) Lookup(code int) (*Definition, error) {
	d, ok := c.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSettingCode, code)
	}

	return d, nil
}

// Definitions returns all definitions in declaration order.
func (c *Catalog) Definitions() []*Definition {
	out := make([]*Definition, len(c.defs))
	copy(out, c.defs)

	return out
}

// DefinitionsInGroup returns the members of a group in declaration order.
func (c *Catalog) DefinitionsInGroup(groupCode int) ([]*Definition, error) {
	g, err := c.LookupGroup(groupCode)
	if err != nil {
		return nil, err
	}

	out := make([]*Definition, len(g.Definitions))
	copy(out, g.Definitions)

	return out, nil
}

// LookupGroup returns the group for code.
func (c *Catalog) LookupGroup(code int) (*Group, error) {
	g, ok := c.byGroups[code]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGroupCode, code)
	}

	return g, nil
}

// Groups returns all groups in declaration order.
func (c *Catalog) Groups() []*Group {
	out := make([]*Group, len(c.groups))
	copy(out, c.groups)

	return out
}

// Lookup returns the definition for code from the built-in catalog.
func Lookup(code int) (*Definition, error) { return defaultCatalog.Lookup(code) }

// Definitions returns every built-in definition in declaration order.
func Definitions() []*Definition { return defaultCatalog.Definitions() }

// DefinitionsInGroup returns the built-in members of a group.
func DefinitionsInGroup(groupCode int) ([]*Definition, error) {
	return defaultCatalog.DefinitionsInGroup(groupCode)
}

// LookupGroup returns a built-in group.
func LookupGroup(code int) (*Group, error) { return defaultCatalog.LookupGroup(code) }

// Groups returns all built-in groups.
func Groups() []*Group { return defaultCatalog.Groups() }

// Default returns the built-in catalog.
func Default() *Catalog { return defaultCatalog }
