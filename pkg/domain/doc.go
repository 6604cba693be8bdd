/*
Package domain contains the core domain models and business logic for the Flipper engine.

It defines the fundamental entities of the fetch-and-commit pipeline, such as Runs,
Keywords, Appraisals and the Portfolio. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Run: Captures one end-to-end pipeline execution (trigger, status, outcome).
  - Keyword: A scored trending term harvested from GitHub or the built-in trend lists.
  - Appraisal: The valuation of a single domain candidate (value, profit, timeline).
  - Portfolio: The acquisition strategy assembled from the best appraisals.
*/
package domain
