// Package schema holds the static description of the Northwind database
// that is embedded verbatim into every generation prompt. The text must
// stay byte-identical between calls: generation cache keys are derived
// from prompts that contain it.
package schema

import "strings"

const description = `Here is the schema for the Northwind database:
- Categories: CategoryID, CategoryName, Description
- Customers: CustomerID, CustomerName, ContactName, Address, City, PostalCode, Country
- Employees: EmployeeID, LastName, FirstName, BirthDate, Photo, Notes
- OrderDetails: OrderDetailID, OrderID, ProductID, Quantity
- Orders: OrderID, CustomerID, EmployeeID, OrderDate, ShipperID
- Products: ProductID, ProductName, SupplierID, CategoryID, Unit, Price
- Shippers: ShipperID, ShipperName, Phone
- Suppliers: SupplierID, SupplierName, ContactName, Address, City, PostalCode, Country, Phone`

// Description returns the fixed schema text.
func Description() string {
	return description
}

// TableNames returns the table names listed in the schema text, in order.
func TableNames() []string {
	names := make([]string, 0, 8)
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		rest := strings.TrimPrefix(line, "- ")
		if idx := strings.Index(rest, ":"); idx > 0 {
			names = append(names, rest[:idx])
		}
	}
	return names
}
