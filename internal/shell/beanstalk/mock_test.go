package beanstalk

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/elasticbeanstalk"
)

// mockAPI is a mock implementation of API with per-operation func fields.
type mockAPI struct {
	DescribeApplicationVersionsFunc func(context.Context, *elasticbeanstalk.DescribeApplicationVersionsInput, ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeApplicationVersionsOutput, error)
	CreateApplicationVersionFunc    func(context.Context, *elasticbeanstalk.CreateApplicationVersionInput, ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.CreateApplicationVersionOutput, error)
	UpdateEnvironmentFunc           func(context.Context, *elasticbeanstalk.UpdateEnvironmentInput, ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.UpdateEnvironmentOutput, error)
	DescribeEnvironmentsFunc        func(context.Context, *elasticbeanstalk.DescribeEnvironmentsInput, ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeEnvironmentsOutput, error)
	DescribeEventsFunc              func(context.Context, *elasticbeanstalk.DescribeEventsInput, ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeEventsOutput, error)
	CreateStorageLocationFunc       func(context.Context, *elasticbeanstalk.CreateStorageLocationInput, ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.CreateStorageLocationOutput, error)
}

func (m *mockAPI) DescribeApplicationVersions(ctx context.Context, params *elasticbeanstalk.DescribeApplicationVersionsInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeApplicationVersionsOutput, error) {
	if m.DescribeApplicationVersionsFunc != nil {
		return m.DescribeApplicationVersionsFunc(ctx, params, optFns...)
	}
	return &elasticbeanstalk.DescribeApplicationVersionsOutput{}, nil
}

func (m *mockAPI) CreateApplicationVersion(ctx context.Context, params *elasticbeanstalk.CreateApplicationVersionInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.CreateApplicationVersionOutput, error) {
	if m.CreateApplicationVersionFunc != nil {
		return m.CreateApplicationVersionFunc(ctx, params, optFns...)
	}
	return &elasticbeanstalk.CreateApplicationVersionOutput{}, nil
}

func (m *mockAPI) UpdateEnvironment(ctx context.Context, params *elasticbeanstalk.UpdateEnvironmentInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.UpdateEnvironmentOutput, error) {
	if m.UpdateEnvironmentFunc != nil {
		return m.UpdateEnvironmentFunc(ctx, params, optFns...)
	}
	return &elasticbeanstalk.UpdateEnvironmentOutput{}, nil
}

func (m *mockAPI) DescribeEnvironments(ctx context.Context, params *elasticbeanstalk.DescribeEnvironmentsInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeEnvironmentsOutput, error) {
	if m.DescribeEnvironmentsFunc != nil {
		return m.DescribeEnvironmentsFunc(ctx, params, optFns...)
	}
	return &elasticbeanstalk.DescribeEnvironmentsOutput{}, nil
}

func (m *mockAPI) DescribeEvents(ctx context.Context, params *elasticbeanstalk.DescribeEventsInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.DescribeEventsOutput, error) {
	if m.DescribeEventsFunc != nil {
		return m.DescribeEventsFunc(ctx, params, optFns...)
	}
	return &elasticbeanstalk.DescribeEventsOutput{}, nil
}

func (m *mockAPI) CreateStorageLocation(ctx context.Context, params *elasticbeanstalk.CreateStorageLocationInput, optFns ...func(*elasticbeanstalk.Options)) (*elasticbeanstalk.CreateStorageLocationOutput, error) {
	if m.CreateStorageLocationFunc != nil {
		return m.CreateStorageLocationFunc(ctx, params, optFns...)
	}
	return &elasticbeanstalk.CreateStorageLocationOutput{}, nil
}
