// Package minio provides a blobstore.BlobStore backed by MinIO or any
// S3-compatible object store.
//
// Typical use is remote tiering of flushed segment files:
//
//	client, _ := minio.New(endpoint, &minio.Options{Creds: creds})
//	store := miniostore.NewStore(client, "vectors", "collections/")
//	w := segment.NewWriter(nil, dir, segment.WithRemoteStore(store))
package minio
