package tables

import (
	"github.com/JonMunkholm/quotedesk/internal/datatable"
	"github.com/JonMunkholm/quotedesk/internal/repository"
)

func init() {
	Register(Definition{
		Info:    Info{Name: "category", Group: GroupEntity, Label: "category.list.title"},
		Factory: NewCategoryTable,
	})
	Register(Definition{
		Info:    Info{Name: "customer", Group: GroupEntity, Label: "customer.list.title"},
		Factory: NewCustomerTable,
	})
	Register(Definition{
		Info:    Info{Name: "global_margin", Group: GroupEntity, Label: "globalmargin.list.title"},
		Factory: NewGlobalMarginTable,
	})
	Register(Definition{
		Info:    Info{Name: "group", Group: GroupEntity, Label: "group.list.title"},
		Factory: NewGroupTable,
	})
	Register(Definition{
		Info:    Info{Name: "product", Group: GroupEntity, Label: "product.list.title"},
		Factory: NewProductTable,
	})
	Register(Definition{
		Info:    Info{Name: "task", Group: GroupEntity, Label: "task.list.title"},
		Factory: NewTaskTable,
	})
	Register(Definition{
		Info:    Info{Name: "user", Group: GroupEntity, Label: "user.list.title"},
		Factory: NewUserTable,
	})
}

func byField(field, order string) datatable.EntityOption {
	return datatable.WithDefaultOrder(datatable.OrderField{Field: field, Order: order})
}

// NewCategoryTable lists categories, filtered by product group.
func NewCategoryTable(d Deps) (*datatable.Table, error) {
	source := datatable.NewEntitySource(
		entityRepository(d, repository.CategoryEntity),
		byField("code", datatable.OrderAsc),
		datatable.WithChoiceFilter(datatable.ChoiceFilter{
			Expr:        "cat.group_id",
			Value:       func(cd datatable.CustomData) int { return cd.GroupID },
			SelectedKey: "group",
			ListKey:     "groups",
			Lookup:      repository.NewGroupChoices(d.DB),
		}),
	)
	return datatable.New("category", source, columns(d, "category", nil), options(d)...)
}

// NewCustomerTable lists customers by company and name.
func NewCustomerTable(d Deps) (*datatable.Table, error) {
	source := datatable.NewEntitySource(
		entityRepository(d, repository.CustomerEntity),
		byField("nameAndCompany", datatable.OrderAsc),
	)
	return datatable.New("customer", source, columns(d, "customer", nil), options(d)...)
}

// NewGlobalMarginTable lists the global margin ranges.
func NewGlobalMarginTable(d Deps) (*datatable.Table, error) {
	source := datatable.NewEntitySource(
		entityRepository(d, repository.GlobalMarginEntity),
		byField("minimum", datatable.OrderAsc),
	)
	return datatable.New("global_margin", source, columns(d, "global_margin", nil), options(d)...)
}

// NewGroupTable lists the product groups.
func NewGroupTable(d Deps) (*datatable.Table, error) {
	source := datatable.NewEntitySource(
		entityRepository(d, repository.GroupEntity),
		byField("code", datatable.OrderAsc),
	)
	return datatable.New("group", source, columns(d, "group", nil), options(d)...)
}

// NewProductTable lists products, filtered by category.
func NewProductTable(d Deps) (*datatable.Table, error) {
	source := datatable.NewEntitySource(
		entityRepository(d, repository.ProductEntity),
		byField("description", datatable.OrderAsc),
		datatable.WithCategoryFilter("p.category_id", repository.NewCategoryChoices(d.DB)),
	)
	return datatable.New("product", source, columns(d, "product", nil), options(d)...)
}

// NewTaskTable lists tasks, filtered by category.
func NewTaskTable(d Deps) (*datatable.Table, error) {
	source := datatable.NewEntitySource(
		entityRepository(d, repository.TaskEntity),
		byField("name", datatable.OrderAsc),
		datatable.WithCategoryFilter("t.category_id", repository.NewCategoryChoices(d.DB)),
	)
	return datatable.New("task", source, columns(d, "task", nil), options(d)...)
}

// NewUserTable lists the application users.
func NewUserTable(d Deps) (*datatable.Table, error) {
	tr := d.translator()
	source := datatable.NewEntitySource(
		entityRepository(d, repository.UserEntity),
		byField("username", datatable.OrderAsc),
	)
	formatters := datatable.Formatters{
		"formatRole":    roleFormatter(tr),
		"formatEnabled": booleanFormatter(tr, "common.value_enabled", "common.value_disabled"),
	}
	return datatable.New("user", source, columns(d, "user", formatters), options(d)...)
}
