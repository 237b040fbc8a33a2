// Package assistant turns natural language questions into SQL over the
// order history schema and runs the reviewed SQL read-only.
package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pgEdge/pgedge-orderbi/internal/schema"
)

// SystemPrompt is sent as the system message of every request.
const SystemPrompt = "You are a PostgreSQL expert who generates accurate SQL queries based on natural language questions."

const promptTemplate = `You are a PostgreSQL expert. Given the following database schema and a user's question, generate a valid PostgreSQL query.

%s

User Question: %s

Requirements:
1. Generate ONLY the SQL query that I can directly use. No other response.
2. Use proper JOINs to get descriptive names from lookup tables
3. Use appropriate aggregations (COUNT, AVG, SUM, etc.) when needed
4. Add LIMIT clauses for queries that might return many rows (default LIMIT 100)
5. Use proper date/time functions for DATE columns
6. Make sure the query is syntactically correct for PostgreSQL
7. Add helpful column aliases using AS
8. CRITICAL: When using aggregate functions, include ALL non-aggregated columns in GROUP BY clause
   Example: SELECT FirstName, LastName, SUM(amount) ... GROUP BY CustomerID, FirstName, LastName

Generate the SQL query:`

// ExampleQuestions are suggested on the query page.
var ExampleQuestions = map[string][]string{
	"Sales Analysis": {
		"What is the total revenue by region?",
		"Who are the top 10 customers by total spending?",
		"What are the monthly sales trends?",
	},
	"Product Analysis": {
		"Which products generate the most revenue?",
		"What is the average order value by product category?",
	},
	"Customer Insights": {
		"How many customers do we have by country?",
		"Which customers haven't ordered in the last 90 days?",
	},
}

// BuildPrompt returns the user message asking for SQL answering question.
func BuildPrompt(question string) string {
	return fmt.Sprintf(promptTemplate, schema.Description, strings.TrimSpace(question))
}

var fenceRE = regexp.MustCompile("(?im)^```sql\\s*|\\s*```$")

// ExtractSQL strips a surrounding ```sql code fence from a model answer.
func ExtractSQL(answer string) string {
	return strings.TrimSpace(fenceRE.ReplaceAllString(answer, ""))
}
