// Package markdown turns awesome-list markdown into a goldmark AST plus the
// document metadata the domain builder needs: frontmatter, title,
// description, the content-visibility verdict and diagnostics for anything
// that was tolerated rather than rejected.
package markdown
