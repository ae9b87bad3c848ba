package catalog

const (
	KindGetProducts    = "catalog.get_products"
	KindGetProductByID = "catalog.get_product_by_id"
	KindAddProduct     = "catalog.add_product"
	KindProductAdded   = "catalog.product_added"
)

type GetProducts struct{}

func (GetProducts) Kind() string { return KindGetProducts }

type GetProductByID struct {
	ID int
}

func (GetProductByID) Kind() string { return KindGetProductByID }

type AddProduct struct {
	Product Product
}

func (AddProduct) Kind() string { return KindAddProduct }

// ProductAdded is published after AddProduct has stored the product.
type ProductAdded struct {
	Product Product
}

func (ProductAdded) Kind() string { return KindProductAdded }
