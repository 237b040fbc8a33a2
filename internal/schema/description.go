package schema

// Description documents the schema for SQL generation prompts. Keep it in
// step with the DDL in schema.go.
const Description = `
Database Schema:

DIMENSION/LOOKUP TABLES:
- Region (
    RegionID SERIAL PRIMARY KEY,
    Region TEXT NOT NULL UNIQUE
  )

- Country (
    CountryID SERIAL PRIMARY KEY,
    Country TEXT NOT NULL UNIQUE,
    RegionID INTEGER (FK to Region)
  )

- ProductCategory (
    ProductCategoryID SERIAL PRIMARY KEY,
    ProductCategory TEXT NOT NULL UNIQUE,
    ProductCategoryDescription TEXT
  )

ENTITY TABLES:
- Customer (
    CustomerID SERIAL PRIMARY KEY,
    FirstName TEXT NOT NULL,
    LastName TEXT NOT NULL,
    Address TEXT,
    City TEXT,
    CountryID INTEGER (FK to Country)
  )

- Product (
    ProductID SERIAL PRIMARY KEY,
    ProductName TEXT NOT NULL UNIQUE,
    ProductUnitPrice NUMERIC NOT NULL,
    ProductCategoryID INTEGER (FK to ProductCategory)
  )

FACT TABLE:
- OrderDetail (
    OrderID SERIAL PRIMARY KEY,
    CustomerID INTEGER (FK to Customer),
    ProductID INTEGER (FK to Product),
    OrderDate DATE NOT NULL,
    QuantityOrdered INTEGER NOT NULL
  )

IMPORTANT NOTES:
- Use JOINs to get descriptive values from dimension tables
- OrderDate is DATE type - use DATE functions for filtering and grouping
- To calculate revenue: ProductUnitPrice * QuantityOrdered
- To get quarters: EXTRACT(QUARTER FROM OrderDate)
- To get year: EXTRACT(YEAR FROM OrderDate)
- To get month: EXTRACT(MONTH FROM OrderDate)
- Always use proper JOINs for foreign key relationships
- Full customer name: FirstName || ' ' || LastName

POSTGRESQL GROUP BY RULES (CRITICAL):
- When using aggregate functions (SUM, COUNT, AVG, etc.), ALL non-aggregated columns in SELECT must be in GROUP BY
- Example: If you SELECT FirstName, LastName, and use SUM(), you must GROUP BY CustomerID, FirstName, LastName
- Correct: GROUP BY c.CustomerID, c.FirstName, c.LastName
- Wrong: GROUP BY c.CustomerID (if selecting FirstName and LastName)
`
