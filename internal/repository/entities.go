package repository

// Expressions shared by several entities.
const (
	// OverallMarginExpr is the ratio of the overall total to the items
	// total, zero for calculations without items.
	OverallMarginExpr = "CASE WHEN c.items_total = 0 THEN 0 ELSE c.overall_total / c.items_total END"

	calculationStateJoin = "JOIN calculation_state s ON s.id = c.state_id"
	productCategoryJoin  = "JOIN category cat ON cat.id = p.category_id"
	taskCategoryJoin     = "JOIN category cat ON cat.id = t.category_id"
	categoryGroupJoin    = "JOIN product_group g ON g.id = cat.group_id"
)

// CalculationEntity lists calculations with their state.
var CalculationEntity = Entity{
	Name:  "calculation",
	From:  "calculation c",
	Joins: []string{calculationStateJoin},
	Fields: []Field{
		{Name: "id", Expr: "c.id"},
		{Name: "date", Expr: "c.date"},
		{Name: "customer", Expr: "c.customer"},
		{Name: "description", Expr: "c.description"},
		{Name: "overallMargin", Expr: OverallMarginExpr, NoSearch: true},
		{Name: "overallTotal", Expr: "c.overall_total"},
		{Name: "state.id", Expr: "s.id", NoSearch: true},
		{Name: "state.code", Expr: "s.code"},
		{Name: "state.color", Expr: "s.color", NoSearch: true, NoSort: true},
		{Name: "state.editable", Expr: "s.editable", NoSearch: true},
	},
}

// CalculationStateEntity lists calculation states with their usage.
var CalculationStateEntity = Entity{
	Name: "calculation_state",
	From: "calculation_state s",
	Fields: []Field{
		{Name: "id", Expr: "s.id"},
		{Name: "code", Expr: "s.code"},
		{Name: "description", Expr: "s.description"},
		{Name: "editable", Expr: "s.editable", NoSearch: true},
		{Name: "color", Expr: "s.color", NoSearch: true, NoSort: true},
		{Name: "calculations", Expr: "(SELECT COUNT(*) FROM calculation c WHERE c.state_id = s.id)", NoSearch: true},
	},
}

// CategoryEntity lists categories with their group.
var CategoryEntity = Entity{
	Name:  "category",
	From:  "category cat",
	Joins: []string{categoryGroupJoin},
	Fields: []Field{
		{Name: "id", Expr: "cat.id"},
		{Name: "code", Expr: "cat.code"},
		{Name: "description", Expr: "cat.description"},
		{Name: "group.id", Expr: "g.id", NoSearch: true},
		{Name: "group.code", Expr: "g.code"},
		{Name: "products", Expr: "(SELECT COUNT(*) FROM product p WHERE p.category_id = cat.id)", NoSearch: true},
		{Name: "tasks", Expr: "(SELECT COUNT(*) FROM task t WHERE t.category_id = cat.id)", NoSearch: true},
	},
}

// CustomerEntity lists customers. Name and company span three columns.
var CustomerEntity = Entity{
	Name: "customer",
	From: "customer cu",
	Fields: []Field{
		{Name: "id", Expr: "cu.id"},
		{
			Name:   "nameAndCompany",
			Expr:   "CONCAT_WS(' ', cu.company, cu.first_name, cu.last_name)",
			Search: []string{"cu.company", "cu.first_name", "cu.last_name"},
			Sort:   "cu.company",
		},
		{Name: "company", Expr: "cu.company"},
		{Name: "address", Expr: "cu.address"},
		{
			Name:   "zipCity",
			Expr:   "CONCAT_WS(' ', cu.zip_code, cu.city)",
			Search: []string{"cu.zip_code", "cu.city"},
			Sort:   "cu.city",
		},
		{Name: "email", Expr: "cu.email"},
	},
}

// GlobalMarginEntity lists the global margin ranges.
var GlobalMarginEntity = Entity{
	Name: "global_margin",
	From: "global_margin gm",
	Fields: []Field{
		{Name: "id", Expr: "gm.id"},
		{Name: "minimum", Expr: "gm.minimum"},
		{Name: "maximum", Expr: "gm.maximum"},
		{Name: "margin", Expr: "gm.margin"},
	},
}

// GroupEntity lists product groups with their usage.
var GroupEntity = Entity{
	Name: "product_group",
	From: "product_group g",
	Fields: []Field{
		{Name: "id", Expr: "g.id"},
		{Name: "code", Expr: "g.code"},
		{Name: "description", Expr: "g.description"},
		{Name: "categories", Expr: "(SELECT COUNT(*) FROM category cat WHERE cat.group_id = g.id)", NoSearch: true},
		{
			Name:     "products",
			Expr:     "(SELECT COUNT(*) FROM product p JOIN category cat ON cat.id = p.category_id WHERE cat.group_id = g.id)",
			NoSearch: true,
		},
	},
}

// ProductEntity lists products with their category and group.
var ProductEntity = Entity{
	Name:  "product",
	From:  "product p",
	Joins: []string{productCategoryJoin, categoryGroupJoin},
	Fields: []Field{
		{Name: "id", Expr: "p.id"},
		{Name: "description", Expr: "p.description"},
		{Name: "unit", Expr: "p.unit"},
		{Name: "price", Expr: "p.price"},
		{Name: "supplier", Expr: "p.supplier"},
		{Name: "category.id", Expr: "cat.id", NoSearch: true},
		{Name: "category.code", Expr: "cat.code"},
		{Name: "group.code", Expr: "g.code"},
	},
}

// TaskEntity lists tasks with their category and group.
var TaskEntity = Entity{
	Name:  "task",
	From:  "task t",
	Joins: []string{taskCategoryJoin, categoryGroupJoin},
	Fields: []Field{
		{Name: "id", Expr: "t.id"},
		{Name: "name", Expr: "t.name"},
		{Name: "unit", Expr: "t.unit"},
		{Name: "supplier", Expr: "t.supplier"},
		{Name: "category.id", Expr: "cat.id", NoSearch: true},
		{Name: "category.code", Expr: "cat.code"},
		{Name: "group.code", Expr: "g.code"},
		{Name: "items", Expr: "(SELECT COUNT(*) FROM task_item ti WHERE ti.task_id = t.id)", NoSearch: true},
	},
}

// UserEntity lists application users.
var UserEntity = Entity{
	Name: "app_user",
	From: "app_user u",
	Fields: []Field{
		{Name: "id", Expr: "u.id"},
		{Name: "username", Expr: "u.username"},
		{Name: "email", Expr: "u.email"},
		{Name: "role", Expr: "u.role"},
		{Name: "enabled", Expr: "u.enabled", NoSearch: true},
		{Name: "lastLogin", Expr: "u.last_login", NoSearch: true},
	},
}
