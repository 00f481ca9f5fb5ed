package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

// OwnerType represents whether an owner is an organization or user.
type OwnerType string

const (
	OwnerTypeOrganization OwnerType = "Organization"
	OwnerTypeUser         OwnerType = "User"
)

// FieldTypeSingleSelect is the data type of fields that can group items.
const FieldTypeSingleSelect = "SINGLE_SELECT"

// Project represents a GitHub Project v2 instance.
type Project struct {
	ID     string // GitHub Project node ID
	Number int    // Project number within the owner's namespace
	Title  string
	Owner  string // Owner login
}

// FieldDef represents a project field definition.
type FieldDef struct {
	ID      string
	Name    string   // e.g. "Status"
	Type    string   // e.g. "SINGLE_SELECT"
	Options []Option // Options of SINGLE_SELECT fields, in project order
}

// Option is one value of a SINGLE_SELECT field; on a board it is a column.
type Option struct {
	ID    string
	Name  string
	Color string
}

// ItemLabel is a label attached to an issue or pull request.
type ItemLabel struct {
	ID    string
	Name  string
	Color string
}

// Item is a project item (Issue, PR, or Draft).
type Item struct {
	ID            string // ProjectV2Item node ID
	ContentType   string // "Issue", "PullRequest", "DraftIssue" or "Private"
	Title         string
	Body          string
	URL           string
	Repo          string
	Number        int
	State         string
	Author        string
	CreatedAt     string
	Assignees     []string
	Labels        []ItemLabel
	GroupOptionID string // Option of the grouping field, empty if unset
}

// ResolveOwner determines if a login is an organization or user.
func (c *Client) ResolveOwner(ctx context.Context, login string) (OwnerType, string, error) {
	req := graphql.NewRequest(`
		query($login: String!) {
			organization(login: $login) {
				id
			}
			user(login: $login) {
				id
			}
		}
	`)
	req.Var("login", login)

	var resp struct {
		Organization *struct {
			ID string `json:"id"`
		} `json:"organization"`
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		// GitHub reports the lookup that missed as an error alongside the one that hit
		if resp.Organization == nil && resp.User == nil {
			return "", "", fmt.Errorf("failed to resolve owner: %w", err)
		}
	}

	if resp.Organization != nil {
		return OwnerTypeOrganization, resp.Organization.ID, nil
	}
	if resp.User != nil {
		return OwnerTypeUser, resp.User.ID, nil
	}

	return "", "", fmt.Errorf("login '%s' not found (neither organization nor user)", login)
}

// ListProjects lists the projects of an owner.
func (c *Client) ListProjects(ctx context.Context, ownerType OwnerType, ownerID string, login string) ([]Project, error) {
	req := graphql.NewRequest(fmt.Sprintf(`
		query($id: ID!, $first: Int!) {
			node(id: $id) {
				... on %s {
					projectsV2(first: $first) {
						nodes {
							id
							number
							title
						}
					}
				}
			}
		}
	`, ownerType))
	req.Var("id", ownerID)
	req.Var("first", 100)

	var resp struct {
		Node struct {
			ProjectsV2 struct {
				Nodes []struct {
					ID     string `json:"id"`
					Number int    `json:"number"`
					Title  string `json:"title"`
				} `json:"nodes"`
			} `json:"projectsV2"`
		} `json:"node"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]Project, 0, len(resp.Node.ProjectsV2.Nodes))
	for _, node := range resp.Node.ProjectsV2.Nodes {
		projects = append(projects, Project{
			ID:     node.ID,
			Number: node.Number,
			Title:  node.Title,
			Owner:  login,
		})
	}

	return projects, nil
}

// FindProject resolves an owner login and project number to a project.
func (c *Client) FindProject(ctx context.Context, login string, number int) (*Project, error) {
	ownerType, ownerID, err := c.ResolveOwner(ctx, login)
	if err != nil {
		return nil, err
	}

	projects, err := c.ListProjects(ctx, ownerType, ownerID, login)
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if p.Number == number {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("project #%d not found for owner %s", number, login)
}

// GetProjectFields fetches the fields of a project, with options for
// SINGLE_SELECT fields in their configured order.
func (c *Client) GetProjectFields(ctx context.Context, projectID string) ([]FieldDef, error) {
	req := graphql.NewRequest(`
		query($projectId: ID!) {
			node(id: $projectId) {
				... on ProjectV2 {
					fields(first: 50) {
						nodes {
							... on ProjectV2Field {
								id
								name
								dataType
							}
							... on ProjectV2SingleSelectField {
								id
								name
								dataType
								options {
									id
									name
									color
								}
							}
							... on ProjectV2IterationField {
								id
								name
								dataType
							}
						}
					}
				}
			}
		}
	`)
	req.Var("projectId", projectID)

	var resp struct {
		Node struct {
			Fields struct {
				Nodes []struct {
					ID       string `json:"id"`
					Name     string `json:"name"`
					DataType string `json:"dataType"`
					Options  []struct {
						ID    string `json:"id"`
						Name  string `json:"name"`
						Color string `json:"color"`
					} `json:"options"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get project fields: %w", err)
	}

	fields := make([]FieldDef, 0, len(resp.Node.Fields.Nodes))
	for _, node := range resp.Node.Fields.Nodes {
		field := FieldDef{
			ID:   node.ID,
			Name: node.Name,
			Type: node.DataType,
		}
		for _, opt := range node.Options {
			field.Options = append(field.Options, Option{
				ID:    opt.ID,
				Name:  opt.Name,
				Color: opt.Color,
			})
		}
		fields = append(fields, field)
	}

	return fields, nil
}

// GetItems fetches one page of project items with the value of the grouping
// field. Returns the items, the next cursor and whether more pages exist.
func (c *Client) GetItems(ctx context.Context, projectID string, groupFieldName string, cursor string, limit int) ([]Item, string, bool, error) {
	req := graphql.NewRequest(`
		query($projectId: ID!, $first: Int!, $after: String, $fieldName: String!) {
			node(id: $projectId) {
				... on ProjectV2 {
					items(first: $first, after: $after) {
						pageInfo {
							hasNextPage
							endCursor
						}
						nodes {
							id
							fieldValueByName(name: $fieldName) {
								... on ProjectV2ItemFieldSingleSelectValue {
									optionId
								}
							}
							content {
								__typename
								... on Issue {
									title
									body
									url
									number
									state
									createdAt
									author { login }
									repository { nameWithOwner }
									assignees(first: 10) { nodes { login } }
									labels(first: 20) { nodes { id name color } }
								}
								... on PullRequest {
									title
									body
									url
									number
									state
									createdAt
									author { login }
									repository { nameWithOwner }
									assignees(first: 10) { nodes { login } }
									labels(first: 20) { nodes { id name color } }
								}
								... on DraftIssue {
									title
									body
								}
							}
						}
					}
				}
			}
		}
	`)
	req.Var("projectId", projectID)
	req.Var("first", limit)
	req.Var("fieldName", groupFieldName)
	if cursor != "" {
		req.Var("after", cursor)
	} else {
		req.Var("after", nil)
	}

	var resp struct {
		Node struct {
			Items struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []struct {
					ID               string `json:"id"`
					FieldValueByName *struct {
						OptionID string `json:"optionId"`
					} `json:"fieldValueByName"`
					Content *struct {
						Typename  string `json:"__typename"`
						Title     string `json:"title"`
						Body      string `json:"body"`
						URL       string `json:"url"`
						Number    int    `json:"number"`
						State     string `json:"state"`
						CreatedAt string `json:"createdAt"`
						Author    *struct {
							Login string `json:"login"`
						} `json:"author"`
						Repository *struct {
							NameWithOwner string `json:"nameWithOwner"`
						} `json:"repository"`
						Assignees *struct {
							Nodes []struct {
								Login string `json:"login"`
							} `json:"nodes"`
						} `json:"assignees"`
						Labels *struct {
							Nodes []struct {
								ID    string `json:"id"`
								Name  string `json:"name"`
								Color string `json:"color"`
							} `json:"nodes"`
						} `json:"labels"`
					} `json:"content"`
				} `json:"nodes"`
			} `json:"items"`
		} `json:"node"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, "", false, fmt.Errorf("failed to get items: %w", err)
	}

	items := make([]Item, 0, len(resp.Node.Items.Nodes))
	for _, node := range resp.Node.Items.Nodes {
		item := Item{ID: node.ID}
		if node.FieldValueByName != nil {
			item.GroupOptionID = node.FieldValueByName.OptionID
		}

		// Null content is a private or deleted item
		if node.Content == nil {
			item.ContentType = "Private"
			item.Title = "(private item)"
			items = append(items, item)
			continue
		}

		content := node.Content
		item.ContentType = content.Typename
		item.Title = content.Title
		item.Body = content.Body
		item.URL = content.URL
		item.Number = content.Number
		item.State = content.State
		item.CreatedAt = content.CreatedAt
		if content.Author != nil {
			item.Author = content.Author.Login
		}
		if content.Repository != nil {
			item.Repo = content.Repository.NameWithOwner
		}
		if content.Assignees != nil {
			for _, a := range content.Assignees.Nodes {
				item.Assignees = append(item.Assignees, a.Login)
			}
		}
		if content.Labels != nil {
			for _, l := range content.Labels.Nodes {
				item.Labels = append(item.Labels, ItemLabel{ID: l.ID, Name: l.Name, Color: l.Color})
			}
		}

		items = append(items, item)
	}

	return items, resp.Node.Items.PageInfo.EndCursor, resp.Node.Items.PageInfo.HasNextPage, nil
}
