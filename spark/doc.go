// Package spark opens Spark Connect sessions preconfigured for a test
// Cassandra cluster.
//
// The facade applies the spark.cassandra.connection.* conf keys on open, so
// concrete test cases get a session that can immediately read and write
// connector tables:
//
//	sess, err := spark.Open(ctx, spark.Config{
//	    Remote:        "sc://localhost:15002",
//	    CassandraHost: cluster.Host,
//	})
//	if err != nil { ... }
//	defer sess.Stop()
//
//	df, err := sess.Sql(ctx, "SELECT * FROM casscatalog.test_ks.users")
package spark
