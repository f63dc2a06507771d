package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/matchrecord --output domain/matchrecord --outpkg matchrecordmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ActiveStateRepository --dir ../domain/matchrecord --output domain/matchrecord --outpkg matchrecordmock --filename active_state_repository_mock.go
