package analytics

// Order lines of one customer, matched on "FirstName LastName". A
// customer without a last name matches on the first name alone.
const customerOrderDetailsSQL = `
SELECT
    CONCAT_WS(' ', C.FirstName, NULLIF(C.LastName, '')) AS Name,
    P.ProductName,
    O.OrderDate,
    P.ProductUnitPrice,
    O.QuantityOrdered,
    ROUND(CAST(P.ProductUnitPrice * O.QuantityOrdered AS NUMERIC), 2) AS Total
FROM OrderDetail O
JOIN Customer C ON O.CustomerID = C.CustomerID
JOIN Product P ON O.ProductID = P.ProductID
WHERE CONCAT_WS(' ', C.FirstName, NULLIF(C.LastName, '')) = $1
ORDER BY O.OrderDate, O.OrderID
`

const customerTotalSQL = `
SELECT
    CONCAT_WS(' ', C.FirstName, NULLIF(C.LastName, '')) AS Name,
    ROUND(CAST(SUM(P.ProductUnitPrice * O.QuantityOrdered) AS NUMERIC), 2) AS Total
FROM OrderDetail AS O
JOIN Customer AS C ON O.CustomerID = C.CustomerID
JOIN Product  AS P ON O.ProductID  = P.ProductID
WHERE CONCAT_WS(' ', C.FirstName, NULLIF(C.LastName, '')) = $1
GROUP BY C.CustomerID, C.FirstName, C.LastName
`

const customerTotalsSQL = `
SELECT
    CONCAT_WS(' ', C.FirstName, NULLIF(C.LastName, '')) AS Name,
    ROUND(CAST(SUM(P.ProductUnitPrice * O.QuantityOrdered) AS NUMERIC), 2) AS Total
FROM OrderDetail O
JOIN Customer C ON O.CustomerID = C.CustomerID
JOIN Product  P ON O.ProductID  = P.ProductID
GROUP BY C.CustomerID, C.FirstName, C.LastName
ORDER BY Total DESC
`

const regionTotalsSQL = `
SELECT
    R.Region AS Region,
    ROUND(CAST(SUM(P.ProductUnitPrice * O.QuantityOrdered) AS NUMERIC), 2) AS Total
FROM OrderDetail O
JOIN Customer C ON O.CustomerID = C.CustomerID
JOIN Product  P ON O.ProductID  = P.ProductID
JOIN Country Y ON C.CountryID   = Y.CountryID
JOIN Region  R ON Y.RegionID    = R.RegionID
GROUP BY R.RegionID, R.Region
ORDER BY Total DESC
`

// Country totals are rounded to whole units.
const countryTotalsSQL = `
SELECT
    Y.Country AS Country,
    ROUND(CAST(SUM(P.ProductUnitPrice * O.QuantityOrdered) AS NUMERIC), 0) AS Total
FROM OrderDetail O
JOIN Customer C ON O.CustomerID = C.CustomerID
JOIN Product  P ON O.ProductID  = P.ProductID
JOIN Country Y ON C.CountryID   = Y.CountryID
GROUP BY Y.CountryID, Y.Country
ORDER BY Total DESC
`

const countryRankWithinRegionSQL = `
SELECT
    R.Region,
    Y.Country,
    ROUND(SUM(P.ProductUnitPrice * O.QuantityOrdered)) AS CountryTotal,
    DENSE_RANK() OVER (PARTITION BY R.Region ORDER BY SUM(P.ProductUnitPrice * O.QuantityOrdered) DESC) AS TotalRank
FROM OrderDetail O
JOIN Customer C ON O.CustomerID = C.CustomerID
JOIN Product P ON O.ProductID = P.ProductID
JOIN Country Y ON C.CountryID = Y.CountryID
JOIN Region R ON Y.RegionID = R.RegionID
GROUP BY R.Region, Y.Country
ORDER BY R.Region ASC, CountryTotal DESC
`

const topCountryPerRegionSQL = `
WITH CountryStats AS (
    SELECT
        R.Region,
        Y.Country,
        ROUND(SUM(P.ProductUnitPrice * O.QuantityOrdered)) AS CountryTotal,
        DENSE_RANK() OVER (PARTITION BY R.Region ORDER BY SUM(P.ProductUnitPrice * O.QuantityOrdered) DESC) AS CountryRegionalRank
    FROM OrderDetail O
    JOIN Customer C ON O.CustomerID = C.CustomerID
    JOIN Product P ON O.ProductID = P.ProductID
    JOIN Country Y ON C.CountryID = Y.CountryID
    JOIN Region R ON Y.RegionID = R.RegionID
    GROUP BY R.Region, Y.Country
)
SELECT
    Region,
    Country,
    CountryTotal,
    CountryRegionalRank
FROM CountryStats
WHERE CountryRegionalRank = 1
ORDER BY Region ASC
`

const quarterlyCustomerTotalsSQL = `
SELECT
    'Q' || EXTRACT(QUARTER FROM O.OrderDate)::TEXT AS Quarter,
    EXTRACT(YEAR FROM O.OrderDate)::INTEGER AS Year,
    O.CustomerID,
    ROUND(SUM(P.ProductUnitPrice * O.QuantityOrdered)) AS Total
FROM OrderDetail O
JOIN Product P ON O.ProductID = P.ProductID
GROUP BY
    EXTRACT(QUARTER FROM O.OrderDate),
    EXTRACT(YEAR FROM O.OrderDate),
    O.CustomerID
ORDER BY Year ASC, Quarter ASC, O.CustomerID ASC
`

const topCustomersPerQuarterSQL = `
WITH CustomerSales AS (
    SELECT
        'Q' || EXTRACT(QUARTER FROM O.OrderDate)::TEXT AS Quarter,
        EXTRACT(YEAR FROM O.OrderDate)::INTEGER AS Year,
        O.CustomerID,
        ROUND(SUM(P.ProductUnitPrice * O.QuantityOrdered)) AS Total
    FROM OrderDetail O
    JOIN Product P ON O.ProductID = P.ProductID
    GROUP BY
        EXTRACT(QUARTER FROM O.OrderDate),
        EXTRACT(YEAR FROM O.OrderDate),
        O.CustomerID
),
RankedSales AS (
    SELECT
        Quarter,
        Year,
        CustomerID,
        Total,
        DENSE_RANK() OVER (PARTITION BY Quarter, Year ORDER BY Total DESC) AS CustomerRank
    FROM CustomerSales
)
SELECT
    Quarter,
    Year,
    CustomerID,
    Total,
    CustomerRank
FROM RankedSales
WHERE CustomerRank <= $1
ORDER BY Year ASC, Quarter ASC, Total DESC
`

// Line totals are rounded before summing.
const monthlyTotalsSQL = `
WITH Monthly_Sales_Data AS (
    SELECT
        EXTRACT(MONTH FROM ord.OrderDate)::INTEGER AS Month_Index,
        SUM(ROUND(prod.ProductUnitPrice * ord.QuantityOrdered)) AS Raw_Total
    FROM OrderDetail ord
    INNER JOIN Product prod ON ord.ProductID = prod.ProductID
    GROUP BY EXTRACT(MONTH FROM ord.OrderDate)
)
SELECT
    CASE Month_Index
        WHEN 1 THEN 'January'
        WHEN 2 THEN 'February'
        WHEN 3 THEN 'March'
        WHEN 4 THEN 'April'
        WHEN 5 THEN 'May'
        WHEN 6 THEN 'June'
        WHEN 7 THEN 'July'
        WHEN 8 THEN 'August'
        WHEN 9 THEN 'September'
        WHEN 10 THEN 'October'
        WHEN 11 THEN 'November'
        WHEN 12 THEN 'December'
    END AS Month,
    CAST(Raw_Total AS FLOAT) AS Total,
    RANK() OVER (ORDER BY Raw_Total DESC) AS TotalRank
FROM Monthly_Sales_Data
ORDER BY Total DESC
`

// For each customer, the longest gap between consecutive order dates. Ties
// go to the earliest gap.
const maxOrderGapsSQL = `
WITH OrderedOrders AS (
    SELECT
        O.CustomerID,
        O.OrderDate,
        LAG(O.OrderDate, 1) OVER (PARTITION BY O.CustomerID ORDER BY O.OrderDate) AS PreviousOrderDate
    FROM OrderDetail O
),
Gaps AS (
    SELECT
        CustomerID,
        OrderDate,
        PreviousOrderDate,
        (OrderDate - PreviousOrderDate) AS DaysWithoutOrder
    FROM OrderedOrders
    WHERE PreviousOrderDate IS NOT NULL
),
MaxGaps AS (
    SELECT
        CustomerID,
        OrderDate,
        PreviousOrderDate,
        DaysWithoutOrder,
        ROW_NUMBER() OVER (PARTITION BY CustomerID ORDER BY DaysWithoutOrder DESC, OrderDate ASC) AS GapRank
    FROM Gaps
)
SELECT
    M.CustomerID,
    C.FirstName,
    C.LastName,
    Y.Country,
    M.OrderDate,
    M.PreviousOrderDate,
    M.DaysWithoutOrder AS MaxDaysWithoutOrder
FROM MaxGaps M
JOIN Customer C ON M.CustomerID = C.CustomerID
JOIN Country Y ON C.CountryID = Y.CountryID
WHERE M.GapRank = 1
ORDER BY MaxDaysWithoutOrder DESC, M.CustomerID DESC
`
