package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rs/zerolog/log"
)

// Entity is a table row keyed by PartitionKey and RowKey
type Entity map[string]any

// Options selects the authentication mode for the table service. A connection
// string wins; otherwise endpoint, account name and access key must all be
// set.
type Options struct {
	ConnectionString string
	Endpoint         string
	AccountName      string
	AccessKey        string
}

// Client wraps a table service client with entity marshalling
type Client struct {
	service *aztables.ServiceClient
}

// NewClient creates a table storage client using either connection string or
// shared key authentication
func NewClient(options *Options) (*Client, error) {
	if options.Endpoint != "" && options.AccountName != "" && options.AccessKey != "" {
		credential, err := aztables.NewSharedKeyCredential(options.AccountName, options.AccessKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		service, err := aztables.NewServiceClientWithSharedKey(options.Endpoint, credential, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
		log.Debug().Str("endpoint", options.Endpoint).Msg("Using shared key authentication")
		return &Client{service: service}, nil
	}

	if options.ConnectionString != "" {
		service, err := aztables.NewServiceClientFromConnectionString(options.ConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
		log.Debug().Msg("Using connection string authentication")
		return &Client{service: service}, nil
	}

	return nil, fmt.Errorf("no table storage credentials: set connectionString or endpoint, accountName and accessKey")
}

// CreateTable creates the table if it does not exist yet
func (c *Client) CreateTable(ctx context.Context, tableName string) error {
	_, err := c.service.CreateTable(ctx, tableName, nil)
	if err != nil {
		var responseError *azcore.ResponseError
		if errors.As(err, &responseError) && responseError.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create table %q: %w", tableName, err)
	}
	return nil
}

// InsertEntity adds a new entity to the table
func (c *Client) InsertEntity(ctx context.Context, tableName string, entity Entity) error {
	marshalled, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	if _, err := c.service.NewClient(tableName).AddEntity(ctx, marshalled, nil); err != nil {
		return fmt.Errorf("failed to insert entity into %q: %w", tableName, err)
	}
	return nil
}

// UpdateEntity replaces an existing entity
func (c *Client) UpdateEntity(ctx context.Context, tableName string, entity Entity) error {
	marshalled, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	mode := aztables.UpdateModeReplace
	_, err = c.service.NewClient(tableName).UpdateEntity(ctx, marshalled, &aztables.UpdateEntityOptions{
		UpdateMode: mode,
	})
	if err != nil {
		return fmt.Errorf("failed to update entity in %q: %w", tableName, err)
	}
	return nil
}

// DeleteEntity removes an entity by its keys
func (c *Client) DeleteEntity(ctx context.Context, tableName, partitionKey, rowKey string) error {
	_, err := c.service.NewClient(tableName).DeleteEntity(ctx, partitionKey, rowKey, nil)
	if err != nil {
		return fmt.Errorf("failed to delete entity %s/%s from %q: %w", partitionKey, rowKey, tableName, err)
	}
	return nil
}

// GetEntity retrieves a single entity by its keys
func (c *Client) GetEntity(ctx context.Context, tableName, partitionKey, rowKey string) (Entity, error) {
	response, err := c.service.NewClient(tableName).GetEntity(ctx, partitionKey, rowKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity %s/%s from %q: %w", partitionKey, rowKey, tableName, err)
	}

	var entity Entity
	if err := json.Unmarshal(response.Value, &entity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return entity, nil
}

// QueryEntities lists all entities matching an OData filter. An empty filter
// returns every entity in the table.
func (c *Client) QueryEntities(ctx context.Context, tableName, filter string) ([]Entity, error) {
	options := &aztables.ListEntitiesOptions{}
	if filter != "" {
		options.Filter = &filter
	}

	var entities []Entity
	pager := c.service.NewClient(tableName).NewListEntitiesPager(options)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query entities from %q: %w", tableName, err)
		}
		for _, raw := range page.Entities {
			var entity Entity
			if err := json.Unmarshal(raw, &entity); err != nil {
				return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			entities = append(entities, entity)
		}
	}
	return entities, nil
}

func marshalEntity(entity Entity) ([]byte, error) {
	if _, ok := entity["PartitionKey"]; !ok {
		return nil, fmt.Errorf("entity is missing PartitionKey")
	}
	if _, ok := entity["RowKey"]; !ok {
		return nil, fmt.Errorf("entity is missing RowKey")
	}
	marshalled, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return marshalled, nil
}
